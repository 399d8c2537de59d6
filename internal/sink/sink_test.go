package sink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/fileconcat/internal/chunk"
	"github.com/jadenpxrk/fileconcat/internal/render"
)

func docs() []render.Document {
	entries := []chunk.Entry{{Path: "src/a.go", Content: "package a"}, {Path: "b.txt", Content: "bee"}}
	return render.Documents(entries, chunk.Plan(entries, 9))
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteFiles(dir, "demo", docs())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "demo-fileconcat-part1.txt"),
		filepath.Join(dir, "demo-fileconcat-part2.txt"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	require.Equal(t, render.Render(docs()[1]), string(data))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.txt")
	doc := render.Single([]chunk.Entry{{Path: "a", Content: "x"}})
	require.NoError(t, WriteFile(path, doc))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "You are an AI assistant"))
}

func TestClipboard(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this platform")
	}
	var got string
	prev := writeClipboard
	t.Cleanup(func() { writeClipboard = prev })

	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	doc := docs()[0]
	require.NoError(t, Clipboard(doc))
	require.Equal(t, render.Render(doc), got)

	writeClipboard = func(string) error { return errors.New("no display") }
	require.ErrorContains(t, Clipboard(doc), "no display")
}

func TestBuildPDF(t *testing.T) {
	pdf := buildPDF(docs())
	require.Equal(t, 2, pdf.PageCount())

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, PDF(path, docs()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}
