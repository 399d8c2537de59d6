// Package pattern evaluates comma-separated glob lists against relative,
// forward-slash separated paths.
package pattern

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Set is a parsed, comma-separated pattern list.
type Set []string

// Parse splits a comma-separated list, trimming whitespace and dropping
// empty entries. An empty or whitespace-only list yields an empty Set,
// meaning "no patterns defined".
func Parse(list string) Set {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var set Set
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			set = append(set, p)
		}
	}
	return set
}

// Defined reports whether the set holds at least one pattern.
func (s Set) Defined() bool {
	return len(s) > 0
}

// String joins the set back into its comma-separated form.
func (s Set) String() string {
	return strings.Join(s, ", ")
}

// Match reports whether path matches pattern. A "*" stays inside one
// segment, "**" crosses segments and "?" matches one non-separator rune.
// Dot-files are not special. A pattern without a slash is also tried
// against the path's last segment, so "*.md" matches "docs/README.md".
func Match(path, pattern string) bool {
	if matchGlob(pattern, path) {
		return true
	}
	if strings.Contains(pattern, "/") {
		return false
	}
	leaf := strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(leaf, "/"); i >= 0 {
		leaf = leaf[i+1:]
	}
	return leaf != path && matchGlob(pattern, leaf)
}

// matchGlob treats malformed patterns as non-matching.
func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// MatchAny reports whether path matches at least one pattern of the set.
func (s Set) MatchAny(path string) bool {
	for _, p := range s {
		if Match(path, p) {
			return true
		}
	}
	return false
}

// MatchSegment reports whether any "/"-separated segment of path matches
// any pattern of the set. This lets a pattern such as ".nx" select
// everything nested below a ".nx" directory.
func (s Set) MatchSegment(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		for _, p := range s {
			if matchGlob(p, part) {
				return true
			}
		}
	}
	return false
}
