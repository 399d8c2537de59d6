// Package tree projects flat file records onto a directory hierarchy with
// tri-state inclusion. Nodes live in a flat arena and refer to each other
// by index.
package tree

import (
	"slices"
	"strings"

	"github.com/jadenpxrk/fileconcat/internal/classify"
	"github.com/jadenpxrk/fileconcat/internal/fileset"
)

// Kind distinguishes files from directories.
type Kind int

const (
	File Kind = iota
	Dir
)

// State is the derived inclusion state of a node.
type State int

const (
	Excluded State = iota
	Included
	Partial
)

func (s State) String() string {
	switch s {
	case Included:
		return "included"
	case Partial:
		return "partial"
	default:
		return "excluded"
	}
}

// Root is the arena index of the root directory.
const Root = 0

// Node is one entry of the arena.
type Node struct {
	Name     string
	Path     string
	Kind     Kind
	Parent   int   // -1 for the root
	Children []int // Directories first, then files, each byte-wise by name
	File     int   // Record index for files, -1 for directories
	State    State
	Size     int64 // Sum of descendant file sizes

	Files         int // Descendant files
	IncludedFiles int // Descendant files currently included
}

// Tree is an immutable snapshot built from records and their verdicts.
type Tree struct {
	Nodes []Node
	index map[string]int
}

// Build creates the tree for records, where verdicts[i] belongs to
// records[i]. A missing verdict counts as excluded.
func Build(records []fileset.Record, verdicts []classify.Verdict) *Tree {
	t := &Tree{
		Nodes: []Node{{Kind: Dir, Parent: -1, File: -1}},
		index: map[string]int{"": Root},
	}

	for i, rec := range records {
		parent := Root
		parts := strings.Split(rec.Path, "/")
		for depth, name := range parts {
			if name == "" {
				continue
			}
			full := strings.Join(parts[:depth+1], "/")
			leaf := depth == len(parts)-1
			id, ok := t.index[full]
			if !ok {
				id = t.add(parent, name, full)
			}
			n := &t.Nodes[id]
			if leaf {
				if len(n.Children) > 0 {
					break
				}
				n.Kind = File
				n.File = i
				n.Size = rec.Size
				n.State = Excluded
				if i < len(verdicts) && verdicts[i].Included {
					n.State = Included
				}
			} else if n.Kind == File {
				// A path used both as a file and as a directory keeps the directory.
				n.Kind = Dir
				n.File = -1
			}
			parent = id
		}
	}

	t.sort(Root)
	t.aggregate(Root)
	return t
}

func (t *Tree) add(parent int, name, full string) int {
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Name: name, Path: full, Kind: Dir, Parent: parent, File: -1})
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	t.index[full] = id
	return id
}

func (t *Tree) sort(id int) {
	children := t.Nodes[id].Children
	slices.SortFunc(children, func(a, b int) int {
		na, nb := &t.Nodes[a], &t.Nodes[b]
		if na.Kind != nb.Kind {
			if na.Kind == Dir {
				return -1
			}
			return 1
		}
		return strings.Compare(na.Name, nb.Name)
	})
	for _, c := range children {
		t.sort(c)
	}
}

func (t *Tree) aggregate(id int) {
	n := &t.Nodes[id]
	if n.Kind == File {
		n.Files = 1
		if n.State == Included {
			n.IncludedFiles = 1
		}
		return
	}

	var size int64
	files, included := 0, 0
	for _, c := range n.Children {
		t.aggregate(c)
		child := &t.Nodes[c]
		size += child.Size
		files += child.Files
		included += child.IncludedFiles
	}

	n = &t.Nodes[id]
	n.Size = size
	n.Files = files
	n.IncludedFiles = included
	switch {
	case files > 0 && included == files:
		n.State = Included
	case included == 0:
		n.State = Excluded
	default:
		n.State = Partial
	}
}

// Lookup returns the arena index of the node at path. The root is "".
func (t *Tree) Lookup(path string) (int, bool) {
	id, ok := t.index[strings.Trim(path, "/")]
	return id, ok
}

// Walk visits the subtree of id in pre-order. Returning false from fn
// skips the children of that node.
func (t *Tree) Walk(id int, fn func(id, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id, depth int, fn func(id, depth int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.Nodes[id].Children {
		t.walk(c, depth+1, fn)
	}
}

// Files returns the record indices of every file under id, in pre-order.
func (t *Tree) Files(id int) []int {
	var out []int
	t.Walk(id, func(n, _ int) bool {
		if t.Nodes[n].Kind == File {
			out = append(out, t.Nodes[n].File)
		}
		return true
	})
	return out
}

// Included returns the record indices of every included file, in tree
// order.
func (t *Tree) Included() []int {
	var out []int
	t.Walk(Root, func(n, _ int) bool {
		if t.Nodes[n].State == Excluded {
			return false
		}
		if t.Nodes[n].Kind == File {
			out = append(out, t.Nodes[n].File)
		}
		return true
	})
	return out
}
