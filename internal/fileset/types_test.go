package fileset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"./src/a.go":    "src/a.go",
		"/abs/b.go":     "abs/b.go",
		`win\dir\c.go`:  "win/dir/c.go",
		"././nested.md": "nested.md",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizePath(in), in)
	}
}

func TestTypeOf(t *testing.T) {
	require.Equal(t, "GO", TypeOf("cmd/main.go"))
	require.Equal(t, "Configuration File", TypeOf("dir.d/Makefile"))
	require.Equal(t, "GITIGNORE", TypeOf(".gitignore"))
}

func TestNewRecordSizesBytes(t *testing.T) {
	r := NewRecord("./é.txt", "héllo")
	require.Equal(t, "é.txt", r.Path)
	require.Equal(t, int64(6), r.Size)
	require.True(t, r.Read)
}

func TestIsText(t *testing.T) {
	require.True(t, IsText([]byte("plain ✓")))
	require.False(t, IsText([]byte{'a', 0, 'b'}))
	require.False(t, IsText([]byte{0xff, 0xfe}))
}

func TestAborted(t *testing.T) {
	require.NoError(t, Aborted(nil))
	err := Aborted(context.Canceled)
	require.ErrorIs(t, err, ErrAborted)
	require.ErrorIs(t, err, context.Canceled)

	other := errors.New("boom")
	require.Equal(t, other, Aborted(other))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Multi ")
	require.NoError(t, err)
	require.Equal(t, Multi, f)
	_, err = ParseFormat("double")
	require.Error(t, err)
}

func TestDedupe(t *testing.T) {
	in := []Record{
		{Path: "h/docs.md"},
		{Path: "h/docs.md"},
		{Path: "h/docs~2.md"},
		{Path: "cfg/.env"},
		{Path: "cfg/.env"},
		{Path: "h/docs.md"},
	}
	out, renamed := Dedupe(in)
	require.Equal(t, 3, renamed)

	var paths []string
	for _, r := range out {
		paths = append(paths, r.Path)
	}
	require.Equal(t, []string{
		"h/docs.md", "h/docs~3.md", "h/docs~2.md", "cfg/.env", "cfg/.env~2", "h/docs~4.md",
	}, paths)
	require.Equal(t, "h/docs.md", in[1].Path)

	_, renamed = Dedupe([]Record{{Path: "a"}, {Path: "b"}})
	require.Zero(t, renamed)
}
