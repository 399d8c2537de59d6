package render

import (
	"fmt"
	"regexp"
	"strings"
)

// TransformOptions are the content rewrites applied before rendering.
type TransformOptions struct {
	RemoveEmptyLines bool
	ShowLineNumbers  bool
}

var emptyLine = regexp.MustCompile(`(?m)^\s*[\r\n]`)

// Transform applies opts to content. Empty lines are dropped before lines
// are numbered.
func Transform(content string, opts TransformOptions) string {
	if opts.RemoveEmptyLines {
		content = emptyLine.ReplaceAllString(content, "")
	}
	if opts.ShowLineNumbers {
		content = numberLines(content)
	}
	return content
}

func numberLines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%4d | %s", i+1, line)
	}
	return b.String()
}
