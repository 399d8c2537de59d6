package render

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
)

var (
	unsafeName = regexp.MustCompile(`[^a-z0-9\-_]`)
	dashes     = regexp.MustCompile(`-+`)
)

func cleanName(s string) string {
	s = unsafeName.ReplaceAllString(strings.ToLower(s), "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ProjectName derives a file-name friendly project name from the included
// paths: a lone root file names the project, then a shared top directory,
// then the dominant or combined top-level directories, then a file count.
func ProjectName(paths []string) string {
	if len(paths) == 0 {
		return "project"
	}

	split := make([][]string, len(paths))
	for i, p := range paths {
		for _, part := range strings.Split(p, "/") {
			if part != "" {
				split[i] = append(split[i], part)
			}
		}
	}

	if len(paths) == 1 && len(split[0]) == 1 {
		name := split[0][0]
		return cleanName(strings.TrimSuffix(name, path.Ext(name)))
	}

	if len(split[0]) > 0 {
		first := split[0][0]
		shared := true
		for _, parts := range split[1:] {
			if len(parts) == 0 || parts[0] != first {
				shared = false
				break
			}
		}
		if shared {
			return cleanName(first)
		}
	}

	counts := map[string]int{}
	var dirs []string
	withDir := 0
	for _, parts := range split {
		if len(parts) < 2 {
			continue
		}
		withDir++
		if counts[parts[0]] == 0 {
			dirs = append(dirs, parts[0])
		}
		counts[parts[0]]++
	}
	if withDir == 0 {
		return cleanName(fmt.Sprintf("%dfiles", len(paths)))
	}

	slices.SortStableFunc(dirs, func(a, b string) int { return counts[b] - counts[a] })
	top := dirs[0]
	switch {
	case counts[top]*2 > withDir:
		return cleanName(top)
	case len(dirs) <= 3:
		return cleanName(strings.Join(dirs, "-"))
	default:
		return cleanName(fmt.Sprintf("%s-%dfiles", top, len(paths)))
	}
}

// FileName names an output file. Part and parts are ignored for single
// output (parts == 0).
func FileName(project string, part, parts int) string {
	if parts == 0 {
		return project + "_fileconcat.txt"
	}
	return fmt.Sprintf("%s-fileconcat-part%d.txt", project, part)
}

// FormatSize renders a byte count with two significant decimals at most.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
	return s + " " + units[i]
}
