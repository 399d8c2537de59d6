// Package source discovers files and loads them into records: local
// directories, git repositories and web pages.
package source

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
)

// ErrUnsupportedURL is returned for inputs no provider understands.
var ErrUnsupportedURL = errors.New("unsupported repository url")

// Provider yields the records of one input.
type Provider interface {
	Fetch(ctx context.Context) (fileset.Batch, error)
}

// SkipFunc reports whether a file should be recorded without reading its
// content, for example because it is binary or too large.
type SkipFunc func(path string, size int64) bool

// job is one file waiting to be read.
type job struct {
	path string
	size int64
	skip bool
	read func() ([]byte, error)
}

type outcome struct {
	rec    fileset.Record
	reason string
}

// readAll reads jobs concurrently. Results keep the order of jobs. Read
// errors become failures; cancellation discards everything and returns
// fileset.ErrAborted.
func readAll(ctx context.Context, jobs []job, workers int) (fileset.Batch, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]outcome, len(jobs))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for i, j := range jobs {
		i, j := i, j
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = load(j)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return fileset.Batch{}, fileset.Aborted(err)
	}
	if err := ctx.Err(); err != nil {
		return fileset.Batch{}, fileset.Aborted(err)
	}

	var batch fileset.Batch
	for _, r := range results {
		if r.reason != "" {
			batch.Failed = append(batch.Failed, fileset.Failure{Path: r.rec.Path, Reason: r.reason})
			continue
		}
		batch.Records = append(batch.Records, r.rec)
	}
	return batch, nil
}

func load(j job) outcome {
	rec := fileset.Record{
		Path: fileset.NormalizePath(j.path),
		Size: j.size,
		Type: fileset.TypeOf(j.path),
	}
	if j.skip {
		return outcome{rec: rec}
	}
	data, err := j.read()
	if err != nil {
		return outcome{rec: rec, reason: err.Error()}
	}
	rec.Size = int64(len(data))
	if !fileset.IsText(data) {
		rec.Binary = true
		return outcome{rec: rec}
	}
	rec.Content = string(data)
	rec.Read = true
	return outcome{rec: rec}
}

// Merge concatenates batches in order.
func Merge(batches ...fileset.Batch) fileset.Batch {
	var out fileset.Batch
	for _, b := range batches {
		out.Records = append(out.Records, b.Records...)
		out.Failed = append(out.Failed, b.Failed...)
	}
	return out
}

// IsWebURL reports whether input is an http or https URL that is not a
// repository link.
func IsWebURL(input string) bool {
	if IsRepoURL(input) {
		return false
	}
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// WithPrefix places every path of b below prefix. An empty prefix returns
// b unchanged.
func WithPrefix(b fileset.Batch, prefix string) fileset.Batch {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return b
	}
	out := fileset.Batch{
		Records: make([]fileset.Record, len(b.Records)),
		Failed:  make([]fileset.Failure, len(b.Failed)),
	}
	for i, r := range b.Records {
		r.Path = prefix + "/" + r.Path
		out.Records[i] = r
	}
	for i, f := range b.Failed {
		f.Path = prefix + "/" + f.Path
		out.Failed[i] = f
	}
	return out
}
