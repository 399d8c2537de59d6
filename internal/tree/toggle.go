package tree

import (
	"slices"

	"github.com/jadenpxrk/fileconcat/internal/classify"
)

// ToggleFile returns a copy of verdicts with the file at index flipped and
// marked as a manual override.
func ToggleFile(verdicts []classify.Verdict, index int) []classify.Verdict {
	out := slices.Clone(verdicts)
	if index >= 0 && index < len(out) {
		out[index] = classify.Force(out[index], !out[index].Included)
	}
	return out
}

// ToggleSubtree collects the files under node and the target state for a
// batch update. A fully included node flips to excluded; a partial or
// excluded node flips to included.
func (t *Tree) ToggleSubtree(node int) (indices []int, include bool) {
	if node < 0 || node >= len(t.Nodes) {
		return nil, false
	}
	return t.Files(node), t.Nodes[node].State != Included
}

// ApplyBatch returns a copy of verdicts where exactly the given indices are
// forced to include.
func ApplyBatch(verdicts []classify.Verdict, indices []int, include bool) []classify.Verdict {
	out := slices.Clone(verdicts)
	for _, i := range indices {
		if i >= 0 && i < len(out) {
			out[i] = classify.Force(out[i], include)
		}
	}
	return out
}

// Stats summarizes the files of a tree.
type Stats struct {
	Uploaded, Included, Excluded             int
	UploadedSize, IncludedSize, ExcludedSize int64
}

// Stats counts files and bytes by inclusion.
func (t *Tree) Stats() Stats {
	var s Stats
	for _, n := range t.Nodes {
		if n.Kind != File {
			continue
		}
		s.Uploaded++
		s.UploadedSize += n.Size
		if n.State == Included {
			s.Included++
			s.IncludedSize += n.Size
		} else {
			s.Excluded++
			s.ExcludedSize += n.Size
		}
	}
	return s
}
