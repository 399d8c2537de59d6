// Package chunk partitions an ordered list of file entries into groups
// bounded by a byte budget.
package chunk

import "fmt"

// DefaultMaxBytes is the default chunk budget, 32 KB.
const DefaultMaxBytes = 32 * 1024

// Entry is one file, or one part of a split file, destined for output.
type Entry struct {
	Path    string
	Content string

	part bool
}

// Part reports whether the entry is a slice of a larger file.
func (e Entry) Part() bool {
	return e.part
}

// Chunk is an ordered group of entries rendered as one document.
type Chunk struct {
	Entries []Entry
}

// Size returns the UTF-8 byte size of the chunk's content.
func (c Chunk) Size() int {
	n := 0
	for _, e := range c.Entries {
		n += len(e.Content)
	}
	return n
}

// Split reports whether the chunk is a single part of a split file.
func (c Chunk) Split() bool {
	return len(c.Entries) == 1 && c.Entries[0].part
}

// Plan groups entries greedily in input order so that no chunk exceeds
// maxBytes. An entry larger than maxBytes is cut at byte offsets into
// ceil(size/maxBytes) parts labelled "path (part i/n)", each emitted as its
// own chunk after flushing the chunk being filled. A non-positive maxBytes
// puts everything in one chunk.
func Plan(entries []Entry, maxBytes int) []Chunk {
	if len(entries) == 0 {
		return nil
	}
	if maxBytes <= 0 {
		return []Chunk{{Entries: append([]Entry(nil), entries...)}}
	}

	var (
		chunks  []Chunk
		current []Entry
		size    int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, Chunk{Entries: current})
			current, size = nil, 0
		}
	}

	for _, e := range entries {
		n := len(e.Content)
		if n > maxBytes {
			flush()
			for _, p := range splitEntry(e, maxBytes) {
				chunks = append(chunks, Chunk{Entries: []Entry{p}})
			}
			continue
		}
		if size+n > maxBytes && len(current) > 0 {
			flush()
		}
		current = append(current, e)
		size += n
	}
	flush()
	return chunks
}

func splitEntry(e Entry, maxBytes int) []Entry {
	total := (len(e.Content) + maxBytes - 1) / maxBytes
	parts := make([]Entry, 0, total)
	for i := 0; i < total; i++ {
		end := min((i+1)*maxBytes, len(e.Content))
		parts = append(parts, Entry{
			Path:    PartLabel(e.Path, i+1, total),
			Content: e.Content[i*maxBytes : end],
			part:    true,
		})
	}
	return parts
}

// PartLabel names part i of n of a split file.
func PartLabel(path string, i, n int) string {
	return fmt.Sprintf("%s (part %d/%d)", path, i, n)
}

// Estimate describes a plan before rendering it.
type Estimate struct {
	Chunks       int
	AverageBytes int
}

// Summary counts chunks and their average size.
func Summary(chunks []Chunk) Estimate {
	if len(chunks) == 0 {
		return Estimate{}
	}
	total := 0
	for _, c := range chunks {
		total += c.Size()
	}
	return Estimate{Chunks: len(chunks), AverageBytes: total / len(chunks)}
}
