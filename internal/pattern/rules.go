package pattern

// Rules pairs the include and ignore lists of a configuration.
type Rules struct {
	Include Set
	Ignore  Set
}

// NewRules parses both comma-separated lists.
func NewRules(include, ignore string) Rules {
	return Rules{Include: Parse(include), Ignore: Parse(ignore)}
}

// Included reports whether include patterns are defined and path is
// selected by them, either directly or through one of its segments.
func (r Rules) Included(path string) bool {
	if !r.Include.Defined() {
		return false
	}
	return r.Include.MatchAny(path) || r.Include.MatchSegment(path)
}

// Ignored reports whether an ignore pattern matches the full path.
func (r Rules) Ignored(path string) bool {
	return r.Ignore.MatchAny(path)
}

// PruneDir reports whether a directory subtree can be skipped before
// traversal. The directory is probed both as "dir" and "dir/". An include
// match on either probe keeps the directory even when ignored.
func (r Rules) PruneDir(dir string) bool {
	probes := [2]string{dir, dir + "/"}
	if r.Include.Defined() {
		for _, p := range probes {
			if r.Include.MatchAny(p) {
				return false
			}
		}
	}
	if !r.Ignore.Defined() {
		return false
	}
	for _, p := range probes {
		if r.Ignore.MatchAny(p) {
			return true
		}
	}
	return false
}
