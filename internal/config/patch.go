package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Patch lists the settings a user may change. Nil fields are untouched.
type Patch struct {
	MaxFileSizeMB       *float64
	IncludePatterns     *string
	IgnorePatterns      *string
	RemoveEmptyLines    *bool
	ShowLineNumbers     *bool
	DefaultOutputFormat *string
	ExcludeHiddenFiles  *bool
	ExcludeBinaryFiles  *bool
	ChunkSizeKB         *int
	Tokenizer           *string
	Model               *string
}

// Apply returns c with patch applied and validated. c is left unchanged
// when the result is invalid.
func (c Config) Apply(p Patch) (Config, error) {
	next := c
	setFloat(&next.MaxFileSizeMB, p.MaxFileSizeMB)
	setInt(&next.ChunkSizeKB, p.ChunkSizeKB)
	setString(&next.IncludePatterns, p.IncludePatterns)
	setString(&next.IgnorePatterns, p.IgnorePatterns)
	setString(&next.DefaultOutputFormat, p.DefaultOutputFormat)
	setString(&next.Tokenizer, p.Tokenizer)
	setString(&next.Model, p.Model)
	setBool(&next.RemoveEmptyLines, p.RemoveEmptyLines)
	setBool(&next.ShowLineNumbers, p.ShowLineNumbers)
	setBool(&next.ExcludeHiddenFiles, p.ExcludeHiddenFiles)
	setBool(&next.ExcludeBinaryFiles, p.ExcludeBinaryFiles)
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// ParsePatch builds a single-field patch from a key and its textual
// value, as given to "config set". Keys match case-insensitively.
func ParsePatch(key, value string) (Patch, error) {
	var p Patch
	intVal := func() (*int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants an integer: %w", ErrInvalid, key, err)
		}
		return &n, nil
	}
	floatVal := func() (*float64, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants a number: %w", ErrInvalid, key, err)
		}
		return &f, nil
	}
	boolVal := func() (*bool, error) {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants true or false: %w", ErrInvalid, key, err)
		}
		return &b, nil
	}

	var err error
	switch strings.ToLower(key) {
	case "maxfilesizemb":
		p.MaxFileSizeMB, err = floatVal()
	case "chunksizekb":
		p.ChunkSizeKB, err = intVal()
	case "includepatterns":
		p.IncludePatterns = &value
	case "ignorepatterns":
		p.IgnorePatterns = &value
	case "defaultoutputformat":
		p.DefaultOutputFormat = &value
	case "tokenizer":
		p.Tokenizer = &value
	case "model":
		p.Model = &value
	case "removeemptylines":
		p.RemoveEmptyLines, err = boolVal()
	case "showlinenumbers":
		p.ShowLineNumbers, err = boolVal()
	case "excludehiddenfiles":
		p.ExcludeHiddenFiles, err = boolVal()
	case "excludebinaryfiles":
		p.ExcludeBinaryFiles, err = boolVal()
	default:
		return Patch{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
	if err != nil {
		return Patch{}, err
	}
	return p, nil
}
