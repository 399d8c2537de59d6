package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
)

// Dir reads a local directory tree, or a single file.
type Dir struct {
	Fs        afero.Fs // Defaults to the OS filesystem
	Root      string
	Rules     pattern.Rules
	Gitignore bool // Honour Root/.gitignore
	Workers   int
	SkipRead  SkipFunc
	Logger    *zap.Logger
}

func (d *Dir) init() {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
}

// Fetch walks Root. Directories matched by the ignore rules, .git and
// gitignored entries are never visited; every other regular file becomes a
// record or a failure.
func (d *Dir) Fetch(ctx context.Context) (fileset.Batch, error) {
	d.init()
	info, err := d.Fs.Stat(d.Root)
	if err != nil {
		return fileset.Batch{}, fmt.Errorf("error accessing path %s: %w", d.Root, err)
	}
	if !info.IsDir() {
		d.Logger.Debug("Processing file", zap.String("path", d.Root))
		return readAll(ctx, []job{d.job(filepath.Base(d.Root), d.Root, info.Size())}, 1)
	}

	d.Logger.Debug("Processing directory", zap.String("path", d.Root))
	ignore := d.loadGitignore()

	var (
		jobs   []job
		failed []fileset.Failure
	)
	walkErr := afero.Walk(d.Fs, d.Root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(d.Root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if err != nil {
			d.Logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			if rel != "." && (info == nil || !info.IsDir()) {
				failed = append(failed, fileset.Failure{Path: rel, Reason: err.Error()})
			}
			return nil
		}
		if rel == "." {
			return nil
		}

		if info.IsDir() {
			if info.Name() == ".git" || d.Rules.PruneDir(rel) || (ignore != nil && ignore.Match("/"+rel, true)) {
				d.Logger.Debug("Pruning directory", zap.String("path", rel))
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if ignore != nil && ignore.Match("/"+rel, false) {
			return nil
		}
		jobs = append(jobs, d.job(rel, path, info.Size()))
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return fileset.Batch{}, fileset.Aborted(ctx.Err())
		}
		return fileset.Batch{}, fmt.Errorf("error walking directory %s: %w", d.Root, walkErr)
	}

	batch, err := readAll(ctx, jobs, d.Workers)
	if err != nil {
		return fileset.Batch{}, err
	}
	batch.Failed = append(failed, batch.Failed...)
	d.Logger.Debug("Directory loaded",
		zap.String("path", d.Root),
		zap.Int("records", len(batch.Records)),
		zap.Int("failed", len(batch.Failed)))
	return batch, nil
}

func (d *Dir) job(name, path string, size int64) job {
	return job{
		path: name,
		size: size,
		skip: d.SkipRead != nil && d.SkipRead(name, size),
		read: func() ([]byte, error) { return afero.ReadFile(d.Fs, path) },
	}
}

func (d *Dir) loadGitignore() gitignore.IgnoreMatcher {
	if !d.Gitignore {
		return nil
	}
	path := filepath.Join(d.Root, ".gitignore")
	f, err := d.Fs.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	d.Logger.Debug("Using .gitignore", zap.String("path", path))
	return gitignore.NewGitIgnoreFromReader("/", f)
}

// IsLocal reports whether input names an existing entry on fs.
func IsLocal(fs afero.Fs, input string) bool {
	if strings.Contains(input, "://") {
		return false
	}
	_, err := fs.Stat(input)
	return err == nil
}
