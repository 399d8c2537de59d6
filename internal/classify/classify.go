// Package classify decides, for every discovered file, whether it belongs
// in the output and why not.
package classify

import (
	"context"
	"path"
	"strconv"
	"strings"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
)

// Reasons attached to excluded verdicts.
const (
	ReasonIncludeFilter = "excluded by include filter"
	ReasonIgnored       = "matched ignore pattern"
	ReasonHidden        = "Hidden file"
	ReasonBinary        = "Binary file"
	ReasonForced        = "Manually included"
	ReasonUnforced      = "Manually excluded"
)

// Verdict is the included/excluded decision for one file.
type Verdict struct {
	Path         string
	Included     bool
	Reason       string
	ForceInclude bool
}

// Options are the built-in checks applied after pattern matching.
type Options struct {
	MaxFileSizeMB      float64
	ExcludeHiddenFiles bool
	ExcludeBinaryFiles bool
}

// DefaultOptions mirrors the default user configuration.
func DefaultOptions() Options {
	return Options{
		MaxFileSizeMB:      32,
		ExcludeHiddenFiles: true,
		ExcludeBinaryFiles: true,
	}
}

// SizeLimit returns the size bound in bytes.
func (o Options) SizeLimit() int64 {
	return int64(o.MaxFileSizeMB * 1024 * 1024)
}

// SizeReason formats the reason used for files over the size limit.
func SizeReason(maxMB float64) string {
	return "File size exceeds " + strconv.FormatFloat(maxMB, 'f', -1, 64) + "MB limit"
}

// Classify resolves a verdict for rec. Include patterns, when defined,
// decide alone and override ignore patterns. Without them, ignore patterns
// are checked before the size, hidden and binary checks. Content that was
// read and found not to be text is always excluded as binary.
func Classify(rec fileset.Record, opts Options, rules pattern.Rules) Verdict {
	v := Verdict{Path: rec.Path}

	if rules.Include.Defined() {
		switch {
		case !rules.Included(rec.Path):
			v.Reason = ReasonIncludeFilter
		case rec.Binary:
			v.Reason = ReasonBinary
		default:
			v.Included = true
		}
		return v
	}

	if rules.Ignored(rec.Path) {
		v.Reason = ReasonIgnored
		return v
	}

	switch {
	case rec.Size > opts.SizeLimit():
		v.Reason = SizeReason(opts.MaxFileSizeMB)
	case opts.ExcludeHiddenFiles && IsHidden(rec.Path):
		v.Reason = ReasonHidden
	case rec.Binary, opts.ExcludeBinaryFiles && IsBinary(rec.Path):
		v.Reason = ReasonBinary
	default:
		v.Included = true
	}
	return v
}

// All classifies records in order. It checks ctx between files and
// returns fileset.ErrAborted, with no verdicts, once ctx is done.
func All(ctx context.Context, records []fileset.Record, opts Options, rules pattern.Rules) ([]Verdict, error) {
	verdicts := make([]Verdict, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, fileset.Aborted(err)
		}
		verdicts[i] = Classify(rec, opts, rules)
	}
	return verdicts, nil
}

// Force applies a manual override. A forced exclusion keeps the previous
// reason when there is one.
func Force(v Verdict, included bool) Verdict {
	v.Included = included
	v.ForceInclude = included
	switch {
	case included:
		v.Reason = ReasonForced
	case v.Reason == "" || v.Reason == ReasonForced:
		v.Reason = ReasonUnforced
	}
	return v
}

// Manual reports whether v was last set by a user toggle.
func (v Verdict) Manual() bool {
	return v.ForceInclude || v.Reason == ReasonUnforced
}

// IsHidden reports whether the leaf name of p starts with a dot.
func IsHidden(p string) bool {
	return strings.HasPrefix(path.Base(p), ".")
}

// IsBinary reports whether p carries a known binary extension.
func IsBinary(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	return BinaryExtensions[ext[1:]]
}
