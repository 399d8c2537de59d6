package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jadenpxrk/fileconcat/internal/classify"
	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/tree"
	"github.com/stretchr/testify/require"
)

func threeFiles() fileset.Batch {
	body := strings.Repeat("x", 50)
	return fileset.Batch{Records: []fileset.Record{
		fileset.NewRecord("src/a.ts", body),
		fileset.NewRecord("src/b.ts", body),
		fileset.NewRecord("README.md", body),
	}}
}

func baseConfig() Config {
	return Config{
		Options:    classify.Options{MaxFileSizeMB: 1, ExcludeHiddenFiles: true, ExcludeBinaryFiles: true},
		Format:     fileset.Single,
		ChunkBytes: 100,
	}
}

func load(t *testing.T, batch fileset.Batch, cfg Config) *Session {
	t.Helper()
	s, err := Load(context.Background(), batch, cfg, nil)
	require.NoError(t, err)
	return s
}

func nodeState(t *testing.T, tr *tree.Tree, path string) tree.Node {
	t.Helper()
	id, ok := tr.Lookup(path)
	require.True(t, ok, path)
	return tr.Nodes[id]
}

func TestAllIncluded(t *testing.T) {
	s := load(t, threeFiles(), baseConfig())
	require.Len(t, s.Included(), 3)

	tr := s.Tree()
	src := nodeState(t, tr, "src")
	require.Equal(t, tree.Included, src.State)
	require.Equal(t, int64(100), src.Size)
	root := nodeState(t, tr, "")
	require.Equal(t, tree.Included, root.State)
	require.Equal(t, int64(150), root.Size)
}

func TestIgnorePattern(t *testing.T) {
	cfg := baseConfig()
	cfg.Ignore = "*.md"
	s := load(t, threeFiles(), cfg)

	require.False(t, s.Verdicts[2].Included)
	require.Equal(t, classify.ReasonIgnored, s.Verdicts[2].Reason)

	tr := s.Tree()
	require.Equal(t, tree.Included, nodeState(t, tr, "src").State)
	require.Equal(t, tree.Partial, nodeState(t, tr, "").State)
}

func TestToggleHiddenFile(t *testing.T) {
	batch := fileset.Batch{Records: []fileset.Record{fileset.NewRecord(".env", "KEY=1")}}
	s := load(t, batch, baseConfig())
	require.False(t, s.Verdicts[0].Included)
	require.Equal(t, classify.ReasonHidden, s.Verdicts[0].Reason)

	toggled := s.Toggle(0)
	require.True(t, toggled.Verdicts[0].Included)
	require.True(t, toggled.Verdicts[0].ForceInclude)
	require.Equal(t, tree.Included, nodeState(t, toggled.Tree(), ".env").State)
	require.Equal(t, []string{".env"}, paths(toggled))

	// The previous snapshot is unchanged.
	require.False(t, s.Verdicts[0].Included)
	require.Empty(t, s.Included())

	// Loading again drops the override.
	reloaded := load(t, batch, baseConfig())
	require.False(t, reloaded.Verdicts[0].Included)
}

func paths(s *Session) []string {
	var out []string
	for _, e := range s.Included() {
		out = append(out, e.Path)
	}
	return out
}

func TestToggleDir(t *testing.T) {
	cfg := baseConfig()
	cfg.Ignore = "src/b.ts"
	s := load(t, threeFiles(), cfg)
	require.Equal(t, tree.Partial, nodeState(t, s.Tree(), "src").State)

	s, err := s.ToggleDir("src")
	require.NoError(t, err)
	require.Equal(t, []string{"src/a.ts", "src/b.ts", "README.md"}, paths(s))

	s, err = s.ToggleDir("src/")
	require.NoError(t, err)
	require.Equal(t, []string{"README.md"}, paths(s))

	_, err = s.ToggleDir("nope")
	require.Error(t, err)
}

func TestReclassifyKeepsOverrides(t *testing.T) {
	s := load(t, threeFiles(), baseConfig()).Toggle(0)
	require.False(t, s.Verdicts[0].Included)

	md := "*.md"
	next, err := s.Reclassify(context.Background(), Patch{Ignore: &md})
	require.NoError(t, err)
	require.Equal(t, []string{"src/b.ts"}, paths(next))
	require.Equal(t, "*.md", next.Config.Ignore)
	require.Empty(t, s.Config.Ignore)

	bad := 0.0
	_, err = s.Reclassify(context.Background(), Patch{MaxFileSizeMB: &bad})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Reclassify(ctx, Patch{})
	require.ErrorIs(t, err, fileset.ErrAborted)
}

func TestEdit(t *testing.T) {
	cfg := baseConfig()
	cfg.Options.MaxFileSizeMB = 1
	s := load(t, threeFiles(), cfg)

	edited, err := s.Edit("README.md", strings.Repeat("y", 2<<20))
	require.NoError(t, err)
	require.False(t, edited.Verdicts[2].Included)
	require.Equal(t, "File size exceeds 1MB limit", edited.Verdicts[2].Reason)
	require.Equal(t, int64(50), s.Records[2].Size)

	_, err = s.Edit("missing", "")
	require.Error(t, err)
}

func TestDocumentsAndPlan(t *testing.T) {
	s := load(t, threeFiles(), baseConfig())
	require.Len(t, s.Plan(), 2)

	docs := s.Documents(fileset.Multi)
	require.Len(t, docs, 2)
	require.Equal(t, 2, docs[1].Parts)

	single := s.Documents(fileset.Single)
	require.Len(t, single, 1)
	require.Len(t, single[0].Entries, 3)
	require.Equal(t, "src", s.ProjectName())
	require.Len(t, s.Text(), 150)
}

func TestTransformApplied(t *testing.T) {
	cfg := baseConfig()
	cfg.TransformOpts.ShowLineNumbers = true
	s := load(t, fileset.Batch{Records: []fileset.Record{fileset.NewRecord("a.txt", "hi")}}, cfg)
	require.Equal(t, "   1 | hi", s.Included()[0].Content)
}

func TestUnreadSkipped(t *testing.T) {
	batch := fileset.Batch{Records: []fileset.Record{{Path: "blob.dat", Size: 10}}}
	s := load(t, batch, baseConfig())
	require.True(t, s.Verdicts[0].Included)
	require.Empty(t, s.Included())
}

func TestFailedSummary(t *testing.T) {
	s := load(t, fileset.Batch{}, baseConfig())
	require.NoError(t, s.FailedSummary(3))

	for _, p := range []string{"a", "b", "c", "d", "e"} {
		s.Failed = append(s.Failed, fileset.Failure{Path: p, Reason: "permission denied"})
	}
	err := s.FailedSummary(3)
	require.Error(t, err)
	msg := err.Error()
	require.True(t, strings.HasPrefix(msg, "5 files failed to read: "))
	require.Contains(t, msg, "c: permission denied")
	require.NotContains(t, msg, "d: permission denied")
	require.Contains(t, msg, "and 2 more")
	require.True(t, errors.As(err, new(fileset.Failure)))
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, threeFiles(), baseConfig(), nil)
	require.ErrorIs(t, err, fileset.ErrAborted)
}

func TestDuplicatePathsStayToggleable(t *testing.T) {
	batch := fileset.Batch{Records: []fileset.Record{
		fileset.NewRecord("h/docs.md", "first"),
		fileset.NewRecord("h/docs.md", "second"),
	}}
	s := load(t, batch, baseConfig())
	require.Equal(t, []string{"h/docs.md", "h/docs~2.md"}, paths(s))
	require.Equal(t, "h/docs~2.md", s.Verdicts[1].Path)
	require.Len(t, s.Tree().Files(tree.Root), 2)

	off, err := s.ToggleDir("")
	require.NoError(t, err)
	require.Empty(t, off.Included())
}
