package render

import (
	"fmt"
	"strings"

	"github.com/jadenpxrk/fileconcat/internal/chunk"
)

// Document is everything one output file is rendered from.
type Document struct {
	Tree    string // Rendered with Tree over every included path
	Entries []chunk.Entry
	Part    int // 1-based; zero for single-document output
	Parts   int
}

// Multi reports whether the document is one part of a multi-document output.
func (d Document) Multi() bool {
	return d.Parts > 0
}

const intro = "You are an AI assistant tasked with analyzing a codebase.\n"

// Render writes the preamble, the project tree and one fenced block per
// entry. It is the only renderer; files, clipboard, PDF and preview all
// consume its output.
func Render(doc Document) string {
	var b strings.Builder
	b.WriteString(intro)
	if doc.Multi() {
		fmt.Fprintf(&b, "This is Part %d of %d.\n", doc.Part, doc.Parts)
		b.WriteString("Below is the complete file structure and the content of files in this part.\n")
	} else {
		b.WriteString("Below is the file structure and the content of the files.\n")
	}
	b.WriteString("Use the file structure to understand the project architecture and dependencies.\n\n")
	b.WriteString("# Project Structure\n```\n")
	b.WriteString(doc.Tree)
	b.WriteString("```\n\n")
	if doc.Multi() {
		fmt.Fprintf(&b, "# File Contents (Part %d/%d)\n", doc.Part, doc.Parts)
	} else {
		b.WriteString("# File Contents\n")
	}

	for i, e := range doc.Entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<file path=\"%s\">\n```\n%s\n```\n</file>", e.Path, e.Content)
	}
	return b.String()
}

// Single builds the one-document output for entries.
func Single(entries []chunk.Entry) Document {
	return Document{Tree: Tree(paths(entries)), Entries: entries}
}

// Documents builds one document per chunk. Every part repeats the tree of
// all entries.
func Documents(entries []chunk.Entry, chunks []chunk.Chunk) []Document {
	tree := Tree(paths(entries))
	docs := make([]Document, len(chunks))
	for i, c := range chunks {
		docs[i] = Document{Tree: tree, Entries: c.Entries, Part: i + 1, Parts: len(chunks)}
	}
	return docs
}

func paths(entries []chunk.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
