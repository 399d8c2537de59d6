// Package render turns included entries into the text documents handed to
// every sink. All functions are pure.
package render

import "strings"

type dirNode struct {
	names    []string
	children map[string]*dirNode // nil entry for files
}

func newDirNode() *dirNode {
	return &dirNode{children: make(map[string]*dirNode)}
}

// Tree draws paths as an ASCII tree with box-drawing connectors. Entries
// keep the order in which they first appear in paths.
func Tree(paths []string) string {
	root := newDirNode()
	for _, p := range paths {
		current := root
		parts := strings.Split(p, "/")
		for i, part := range parts {
			child, seen := current.children[part]
			if !seen {
				current.names = append(current.names, part)
				if i < len(parts)-1 {
					child = newDirNode()
				}
				current.children[part] = child
			}
			if child == nil {
				break
			}
			current = child
		}
	}

	var b strings.Builder
	writeNode(&b, root, "")
	return b.String()
}

func writeNode(b *strings.Builder, n *dirNode, prefix string) {
	for i, name := range n.names {
		connector, extension := "├── ", "│   "
		if i == len(n.names)-1 {
			connector, extension = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(name)
		b.WriteByte('\n')
		if child := n.children[name]; child != nil {
			writeNode(b, child, prefix+extension)
		}
	}
}
