package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/jadenpxrk/fileconcat/internal/render"
	"github.com/jadenpxrk/fileconcat/internal/session"
	"github.com/jadenpxrk/fileconcat/internal/tree"
)

// previewLines caps the file content shown in the preview window.
const previewLines = 40

// candidates lists every node below the root in tree order.
func candidates(t *tree.Tree) []int {
	var ids []int
	t.Walk(tree.Root, func(id, _ int) bool {
		if id != tree.Root {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

func stateMark(s tree.State) string {
	switch s {
	case tree.Included:
		return "[x]"
	case tree.Partial:
		return "[~]"
	default:
		return "[ ]"
	}
}

// nodeLabel is the finder line for a node: its state and its path, with a
// trailing slash for directories.
func nodeLabel(n tree.Node) string {
	path := n.Path
	if n.Kind == tree.Dir {
		path += "/"
	}
	return stateMark(n.State) + " " + path
}

// applySelection toggles every selected node in order. Files flip on their
// own; directories flip as a whole.
func applySelection(s *session.Session, t *tree.Tree, selected []int) (*session.Session, error) {
	for _, id := range selected {
		n := t.Nodes[id]
		if n.Kind == tree.File {
			s = s.Toggle(n.File)
			continue
		}
		var err error
		s, err = s.ToggleDir(n.Path)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// preview describes a node for the preview window.
func preview(s *session.Session, n tree.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path: %s\nState: %s\nSize: %s\n", n.Path, n.State, render.FormatSize(n.Size))
	if n.Kind == tree.Dir {
		fmt.Fprintf(&b, "Files: %d (%d included)\n", n.Files, n.IncludedFiles)
		return b.String()
	}
	v := s.Verdicts[n.File]
	if v.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", v.Reason)
	}
	rec := s.Records[n.File]
	if !rec.Read {
		return b.String()
	}
	b.WriteString("\n")
	lines := strings.SplitN(rec.Content, "\n", previewLines+1)
	if len(lines) > previewLines {
		lines = append(lines[:previewLines], "...")
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// runInteractive lets the user toggle files and directories until the
// finder is closed with Esc.
func runInteractive(s *session.Session) (*session.Session, error) {
	for {
		t := s.Tree()
		ids := candidates(t)
		if len(ids) == 0 {
			return s, nil
		}
		picked, err := fuzzyfinder.FindMulti(
			ids,
			func(i int) string {
				return nodeLabel(t.Nodes[ids[i]])
			},
			fuzzyfinder.WithHeader("Tab selects, Enter toggles the selection, Esc finishes"),
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return "Select files or directories to toggle."
				}
				return preview(s, t.Nodes[ids[i]])
			}),
		)
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				st := t.Stats()
				fmt.Fprintf(os.Stderr, "Selection done: %d of %d files included.\n", st.Included, st.Uploaded)
				return s, nil
			}
			return nil, fmt.Errorf("fuzzy finder error: %w", err)
		}
		selected := make([]int, len(picked))
		for i, p := range picked {
			selected[i] = ids[p]
		}
		s, err = applySelection(s, t, selected)
		if err != nil {
			return nil, err
		}
	}
}
