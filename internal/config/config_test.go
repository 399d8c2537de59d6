package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 32.0, cfg.MaxFileSizeMB)
	require.Equal(t, pattern.DefaultIgnoreString, cfg.IgnorePatterns)
	require.Equal(t, "single", cfg.DefaultOutputFormat)
	require.Len(t, cfg.Map(), len(Keys))

	sc := cfg.Session()
	require.Equal(t, 32*1024, sc.ChunkBytes)
	require.Equal(t, fileset.Single, sc.Format)
	require.True(t, sc.Options.ExcludeHiddenFiles)
}

func TestReadMissingFile(t *testing.T) {
	v := viper.New()
	require.NoError(t, Init(v, filepath.Join(t.TempDir(), "absent.toml")))
	cfg, migrated, err := Read(v)
	require.NoError(t, err)
	require.False(t, migrated)
	require.Equal(t, Default(), cfg)
}

func TestSaveAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.IncludePatterns = "*.go, *.md"
	cfg.ShowLineNumbers = true
	require.NoError(t, Save(path, cfg))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestMigrateV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	doc := `{"version": 1, "maxFileSizeMB": 8, "defaultOutputFormat": "multi",
		"customIgnorePatterns": ["node_modules", "*.log"]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, migrated, err := Read(v)
	require.NoError(t, err)
	require.True(t, migrated)
	require.Equal(t, Version, cfg.Version)
	require.Equal(t, 8.0, cfg.MaxFileSizeMB)
	require.Equal(t, "multi", cfg.DefaultOutputFormat)
	require.Equal(t, "node_modules, *.log", cfg.IgnorePatterns)
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 2\nmaxFileSizeMB: 0\n"), 0o644))
	_, err := ReadFile(path)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FILECONCAT_MAXFILESIZEMB", "4")
	v := viper.New()
	require.NoError(t, Init(v, filepath.Join(t.TempDir(), "none.toml")))
	cfg, _, err := Read(v)
	require.NoError(t, err)
	require.Equal(t, 4.0, cfg.MaxFileSizeMB)
}

func TestApplyPatch(t *testing.T) {
	cfg := Default()

	p, err := ParsePatch("maxFileSizeMB", "10")
	require.NoError(t, err)
	next, err := cfg.Apply(p)
	require.NoError(t, err)
	require.Equal(t, 10.0, next.MaxFileSizeMB)
	require.Equal(t, 32.0, cfg.MaxFileSizeMB)

	p, err = ParsePatch("maxFileSizeMB", "0.5")
	require.NoError(t, err)
	half, err := cfg.Apply(p)
	require.NoError(t, err)
	require.Equal(t, int64(512*1024), half.Session().Options.SizeLimit())

	p, err = ParsePatch("showlinenumbers", "true")
	require.NoError(t, err)
	next, err = next.Apply(p)
	require.NoError(t, err)
	require.True(t, next.ShowLineNumbers)

	p, err = ParsePatch("defaultOutputFormat", "pdf")
	require.NoError(t, err)
	_, err = next.Apply(p)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = ParsePatch("chunkSizeKB", "big")
	require.ErrorIs(t, err, ErrInvalid)
	_, err = ParsePatch("nope", "1")
	require.ErrorIs(t, err, ErrInvalid)
}
