// Package fileset holds the records exchanged between sources, the
// classification core and the sinks.
package fileset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// ErrAborted is returned when a fetch or batch operation is cancelled.
// Callers branch on it with errors.Is to tell a user cancel from a failure.
var ErrAborted = errors.New("operation aborted")

// Record is one discovered file.
type Record struct {
	Path    string // Forward-slash separated, relative
	Size    int64
	Type    string // MIME type or upper-cased extension
	Content string
	Read    bool // False when the content was never loaded
	Binary  bool // Content was loaded but is not text
}

// Failure describes a file that could not be read. Failed files get no verdict.
type Failure struct {
	Path   string
	Reason string
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Reason)
}

// Batch is what a source yields: the readable records plus the files that failed.
type Batch struct {
	Records []Record
	Failed  []Failure
}

// NewRecord builds a record from loaded content, sizing it in UTF-8 bytes.
func NewRecord(path, content string) Record {
	return Record{
		Path:    NormalizePath(path),
		Size:    int64(len(content)),
		Type:    TypeOf(path),
		Content: content,
		Read:    true,
	}
}

// NormalizePath converts separators to forward slashes and strips leading "./" and "/".
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return strings.TrimLeft(path, "/")
}

// TypeOf returns the display type of a file: its upper-cased extension, or
// "Configuration File" when the name has no extension.
func TypeOf(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return "Configuration File"
	}
	return strings.ToUpper(name[dot+1:])
}

// IsText reports whether content decodes as UTF-8 without NUL bytes.
func IsText(content []byte) bool {
	for _, b := range content {
		if b == 0 {
			return false
		}
	}
	return utf8.Valid(content)
}

// Aborted wraps a context error as ErrAborted, passing other errors through.
func Aborted(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return err
}

// Format selects single or multi-document output.
type Format string

const (
	Single Format = "single"
	Multi  Format = "multi"
	Auto   Format = "auto" // Decided from the token estimate
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Single, Multi, Auto:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want single, multi or auto)", s)
}

// Dedupe returns records with unique paths. The first record with a path
// keeps it; later ones get a "~N" suffix before the extension, N counting
// from 2. The input slice is not modified. renamed counts changed paths.
func Dedupe(records []Record) (out []Record, renamed int) {
	taken := make(map[string]bool, len(records))
	for _, r := range records {
		taken[r.Path] = true
	}
	kept := make(map[string]bool, len(records))
	out = make([]Record, len(records))
	for i, r := range records {
		if !kept[r.Path] {
			kept[r.Path] = true
			out[i] = r
			continue
		}
		stem, ext := r.Path, path.Ext(r.Path)
		if ext != "" && !strings.HasSuffix(r.Path, "/"+ext) && r.Path != ext {
			stem = strings.TrimSuffix(r.Path, ext)
		} else {
			ext = ""
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s~%d%s", stem, n, ext)
			if !taken[candidate] {
				taken[candidate] = true
				r.Path = candidate
				break
			}
		}
		out[i] = r
		renamed++
	}
	return out, renamed
}
