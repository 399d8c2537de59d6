// Package sink delivers rendered documents: files, the clipboard and PDF.
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jadenpxrk/fileconcat/internal/render"
)

// WriteFiles renders each document into dir, named after project, and
// returns the written paths in order.
func WriteFiles(dir, project string, docs []render.Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		path := filepath.Join(dir, render.FileName(project, doc.Part, doc.Parts))
		if err := os.WriteFile(path, []byte(render.Render(doc)), 0o644); err != nil {
			return paths, fmt.Errorf("error writing to file %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteFile renders a single document to path.
func WriteFile(path string, doc render.Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(render.Render(doc)), 0o644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}
	return nil
}
