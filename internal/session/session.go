// Package session holds the application state as immutable snapshots.
// Every transition returns a new Session; derived views are computed from
// the current verdicts on each call.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jadenpxrk/fileconcat/internal/chunk"
	"github.com/jadenpxrk/fileconcat/internal/classify"
	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
	"github.com/jadenpxrk/fileconcat/internal/render"
	"github.com/jadenpxrk/fileconcat/internal/tree"
)

// Config is the plain configuration record the core consumes.
type Config struct {
	Options       classify.Options
	Include       string
	Ignore        string
	Format        fileset.Format
	ChunkBytes    int
	TransformOpts render.TransformOptions
}

// Rules parses the pattern lists.
func (c Config) Rules() pattern.Rules {
	return pattern.NewRules(c.Include, c.Ignore)
}

// Patch lists the configuration fields that can change mid-session.
// Nil fields are left as they are.
type Patch struct {
	Include            *string
	Ignore             *string
	MaxFileSizeMB      *float64
	ExcludeHiddenFiles *bool
	ExcludeBinaryFiles *bool
}

// Session is one snapshot of loaded files and their verdicts.
type Session struct {
	Config   Config
	Records  []fileset.Record
	Verdicts []classify.Verdict // Verdicts[i] belongs to Records[i]
	Failed   []fileset.Failure

	logger *zap.Logger
}

// Load classifies a freshly loaded batch. Manual overrides never survive a
// load. Records sharing a path are renamed so every path has one verdict.
func Load(ctx context.Context, batch fileset.Batch, cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	records, renamed := fileset.Dedupe(batch.Records)
	if renamed > 0 {
		logger.Warn("Renamed records with duplicate paths", zap.Int("count", renamed))
	}
	verdicts, err := classify.All(ctx, records, cfg.Options, cfg.Rules())
	if err != nil {
		return nil, err
	}
	s := &Session{
		Config:   cfg,
		Records:  records,
		Verdicts: verdicts,
		Failed:   batch.Failed,
		logger:   logger,
	}
	logger.Debug("Session loaded",
		zap.Int("records", len(records)),
		zap.Int("failed", len(batch.Failed)),
		zap.Int("included", len(s.Included())))
	return s, nil
}

func (s *Session) with(verdicts []classify.Verdict) *Session {
	next := *s
	next.Verdicts = verdicts
	return &next
}

// Toggle flips the file at index as a manual override.
func (s *Session) Toggle(index int) *Session {
	return s.with(tree.ToggleFile(s.Verdicts, index))
}

// ToggleDir flips every file under the directory at path. A fully
// included directory becomes excluded, anything else becomes included.
func (s *Session) ToggleDir(path string) (*Session, error) {
	t := s.Tree()
	id, ok := t.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("no such path %q", path)
	}
	indices, include := t.ToggleSubtree(id)
	s.logger.Debug("Toggling subtree",
		zap.String("path", path),
		zap.Int("files", len(indices)),
		zap.Bool("include", include))
	return s.with(tree.ApplyBatch(s.Verdicts, indices, include)), nil
}

// Reclassify applies patch and classifies every record again. Manual
// overrides are kept for files that carry one.
func (s *Session) Reclassify(ctx context.Context, patch Patch) (*Session, error) {
	cfg := s.Config
	if patch.Include != nil {
		cfg.Include = *patch.Include
	}
	if patch.Ignore != nil {
		cfg.Ignore = *patch.Ignore
	}
	if patch.MaxFileSizeMB != nil {
		if *patch.MaxFileSizeMB <= 0 {
			return nil, fmt.Errorf("max file size must be positive, got %g", *patch.MaxFileSizeMB)
		}
		cfg.Options.MaxFileSizeMB = *patch.MaxFileSizeMB
	}
	if patch.ExcludeHiddenFiles != nil {
		cfg.Options.ExcludeHiddenFiles = *patch.ExcludeHiddenFiles
	}
	if patch.ExcludeBinaryFiles != nil {
		cfg.Options.ExcludeBinaryFiles = *patch.ExcludeBinaryFiles
	}

	verdicts, err := classify.All(ctx, s.Records, cfg.Options, cfg.Rules())
	if err != nil {
		return nil, err
	}
	for i, v := range s.Verdicts {
		if v.Manual() {
			verdicts[i] = v
		}
	}
	next := s.with(verdicts)
	next.Config = cfg
	return next, nil
}

// Edit replaces the content of the file at path and classifies it again,
// dropping any manual override on it.
func (s *Session) Edit(path, content string) (*Session, error) {
	i := s.index(path)
	if i < 0 {
		return nil, fmt.Errorf("no such file %q", path)
	}
	next := *s
	next.Records = slices.Clone(s.Records)
	rec := fileset.NewRecord(path, content)
	next.Records[i] = rec
	next.Verdicts = slices.Clone(s.Verdicts)
	next.Verdicts[i] = classify.Classify(rec, s.Config.Options, s.Config.Rules())
	return &next, nil
}

func (s *Session) index(path string) int {
	path = fileset.NormalizePath(path)
	for i, r := range s.Records {
		if r.Path == path {
			return i
		}
	}
	return -1
}

// Tree builds the inclusion tree of the current verdicts.
func (s *Session) Tree() *tree.Tree {
	return tree.Build(s.Records, s.Verdicts)
}

// Included returns the included files in load order, with content
// transforms applied. Records whose content was never read are left out.
func (s *Session) Included() []chunk.Entry {
	var out []chunk.Entry
	for i, v := range s.Verdicts {
		if !v.Included {
			continue
		}
		rec := s.Records[i]
		if !rec.Read {
			s.logger.Debug("Skipping unread file", zap.String("path", rec.Path))
			continue
		}
		out = append(out, chunk.Entry{
			Path:    rec.Path,
			Content: render.Transform(rec.Content, s.Config.TransformOpts),
		})
	}
	return out
}

// Text joins the included content, the input of token estimation.
func (s *Session) Text() string {
	var b strings.Builder
	for _, e := range s.Included() {
		b.WriteString(e.Content)
	}
	return b.String()
}

// Plan partitions the included files by the configured chunk budget.
func (s *Session) Plan() []chunk.Chunk {
	return chunk.Plan(s.Included(), s.Config.ChunkBytes)
}

// Documents renders the included files in the given format. Auto must be
// resolved by the caller.
func (s *Session) Documents(format fileset.Format) []render.Document {
	entries := s.Included()
	if format == fileset.Multi {
		return render.Documents(entries, chunk.Plan(entries, s.Config.ChunkBytes))
	}
	return []render.Document{render.Single(entries)}
}

// ProjectName names the output after the included paths.
func (s *Session) ProjectName() string {
	entries := s.Included()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return render.ProjectName(paths)
}

// FailedSummary describes read failures with at most n paths listed.
// It returns nil when nothing failed.
func (s *Session) FailedSummary(n int) error {
	if len(s.Failed) == 0 {
		return nil
	}
	var err error
	for i, f := range s.Failed {
		if i == n {
			err = multierr.Append(err, fmt.Errorf("and %d more", len(s.Failed)-n))
			break
		}
		err = multierr.Append(err, f)
	}
	return fmt.Errorf("%d files failed to read: %w", len(s.Failed), err)
}
