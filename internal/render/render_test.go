package render

import (
	"strings"
	"testing"

	"github.com/jadenpxrk/fileconcat/internal/chunk"
	"github.com/stretchr/testify/require"
)

func TestTree(t *testing.T) {
	got := Tree([]string{"src/a.ts", "src/lib/b.ts", "README.md", "src/c.ts"})
	want := "" +
		"├── src\n" +
		"│   ├── a.ts\n" +
		"│   ├── lib\n" +
		"│   │   └── b.ts\n" +
		"│   └── c.ts\n" +
		"└── README.md\n"
	require.Equal(t, want, got)
	require.Empty(t, Tree(nil))
}

func TestRenderSingle(t *testing.T) {
	doc := Single([]chunk.Entry{{Path: "a.go", Content: "package a"}, {Path: "b/c.go", Content: "package c"}})
	out := Render(doc)

	require.True(t, strings.HasPrefix(out, "You are an AI assistant tasked with analyzing a codebase.\nBelow is the file structure"))
	require.Contains(t, out, "# Project Structure\n```\n├── a.go\n└── b\n    └── c.go\n```\n\n# File Contents\n")
	require.True(t, strings.HasSuffix(out,
		"<file path=\"a.go\">\n```\npackage a\n```\n</file>\n\n<file path=\"b/c.go\">\n```\npackage c\n```\n</file>"))
	require.NotContains(t, out, "Part")
	require.Equal(t, out, Render(doc))
}

func TestDocuments(t *testing.T) {
	entries := []chunk.Entry{{Path: "a", Content: "1111"}, {Path: "b", Content: "2222"}}
	chunks := chunk.Plan(entries, 4)
	docs := Documents(entries, chunks)
	require.Len(t, docs, 2)

	for i, d := range docs {
		out := Render(d)
		require.Equal(t, i+1, d.Part)
		require.Contains(t, out, "├── a\n└── b\n")
		require.Contains(t, out, "Below is the complete file structure and the content of files in this part.")
	}
	second := Render(docs[1])
	require.Contains(t, second, "This is Part 2 of 2.\n")
	require.Contains(t, second, "# File Contents (Part 2/2)\n")
	require.NotContains(t, second, "1111")
}

func TestTransform(t *testing.T) {
	in := "a\n\n   \nb\r\n\r\nc"
	require.Equal(t, in, Transform(in, TransformOptions{}))
	require.Equal(t, "a\nb\r\nc", Transform(in, TransformOptions{RemoveEmptyLines: true}))
	require.Equal(t, "   1 | a\n   2 | b\n   3 | c",
		Transform(in, TransformOptions{RemoveEmptyLines: true, ShowLineNumbers: true}))
	require.Equal(t, "   1 | x\n   2 | ", Transform("x\r\n", TransformOptions{ShowLineNumbers: true}))
}

func TestProjectName(t *testing.T) {
	cases := []struct {
		paths []string
		want  string
	}{
		{nil, "project"},
		{[]string{"My File.test.ts"}, "my-file-test"},
		{[]string{"app/src/a.ts", "app/b.ts"}, "app"},
		{[]string{"src/a.ts", "src/b.ts", "README.md"}, "src"},
		{[]string{"api/a", "web/b", "README"}, "api-web"},
		{[]string{"a/1", "b/1", "c/1", "d/1"}, "a-4files"},
		{[]string{"x.go", "y.go"}, "2files"},
		{[]string{"--Weird__Dir--/f", "--Weird__Dir--/g"}, "weird__dir"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ProjectName(tc.paths), "%v", tc.paths)
	}
}

func TestFileName(t *testing.T) {
	require.Equal(t, "app_fileconcat.txt", FileName("app", 0, 0))
	require.Equal(t, "app-fileconcat-part2.txt", FileName("app", 2, 3))
}

func TestFormatSize(t *testing.T) {
	require.Equal(t, "0 Bytes", FormatSize(0))
	require.Equal(t, "150 Bytes", FormatSize(150))
	require.Equal(t, "1.5 KB", FormatSize(1536))
	require.Equal(t, "1 MB", FormatSize(1<<20))
	require.Equal(t, "2.25 GB", FormatSize(9<<28))
}
