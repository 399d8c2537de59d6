// Package tokens estimates token counts and relates them to model
// context limits.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"go.uber.org/zap"
)

// MaxEstimateBytes caps the input handed to a tokenizer.
const MaxEstimateBytes = 1 << 20

// MultiOutputLimit is the token count above which multi-document output
// is recommended.
const MultiOutputLimit = 100_000

// ErrTooLarge is returned for inputs over MaxEstimateBytes. Callers skip
// estimation instead of failing.
var ErrTooLarge = errors.New("text too large for token estimation")

// Estimator wraps a Tokenizer with a size cap, cancellation and a
// character-based fallback.
type Estimator struct {
	tokenizer Tokenizer
	logger    *zap.Logger
}

// NewEstimator returns an estimator. A nil tokenizer always falls back.
func NewEstimator(tk Tokenizer, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{tokenizer: tk, logger: logger}
}

type result struct {
	n   int
	err error
}

// Estimate counts the tokens of text. The tokenizer runs on its own
// goroutine so ctx cancellation returns immediately. When the tokenizer
// fails or panics the count falls back to ceil(runes/4).
func (e *Estimator) Estimate(ctx context.Context, text string) (int, error) {
	if len(text) > MaxEstimateBytes {
		return 0, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(text), MaxEstimateBytes)
	}
	if e.tokenizer == nil {
		return Fallback(text), nil
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("tokenizer panic: %v", r)}
			}
		}()
		n, err := e.tokenizer.CountTokens(text)
		done <- result{n: n, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, fileset.Aborted(ctx.Err())
	case r := <-done:
		if r.err != nil {
			n := Fallback(text)
			e.logger.Warn("Tokenizer failed, using character estimate",
				zap.Error(r.err),
				zap.Int("estimate", n))
			return n, nil
		}
		return r.n, nil
	}
}

// Fallback approximates a token count as one token per four characters.
func Fallback(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// Recommend picks the output format for an estimate. A failed estimate
// recommends single-document output.
func Recommend(count int, err error) fileset.Format {
	if err == nil && count > MultiOutputLimit {
		return fileset.Multi
	}
	return fileset.Single
}
