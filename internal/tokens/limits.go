package tokens

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed limits.yaml
var defaultLimits []byte

// Limit is a named model context window.
type Limit struct {
	Name       string `yaml:"name"`
	Limit      int    `yaml:"limit"`
	InputLimit int    `yaml:"inputLimit,omitempty"`
}

// Usage is a Limit paired with the share of it a count uses.
type Usage struct {
	Limit
	Percent float64
}

// Fits reports whether the count is within the limit.
func (u Usage) Fits() bool {
	return u.Percent <= 100
}

var builtin []Limit

func init() {
	var err error
	builtin, err = ParseLimits(defaultLimits)
	if err != nil {
		panic(fmt.Sprintf("tokens: embedded limits: %v", err))
	}
}

// Limits returns a copy of the built-in table.
func Limits() []Limit {
	return append([]Limit(nil), builtin...)
}

// ParseLimits decodes a YAML list of limits.
func ParseLimits(data []byte) ([]Limit, error) {
	var limits []Limit
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return nil, fmt.Errorf("parse limits: %w", err)
	}
	for i, l := range limits {
		if l.Name == "" || l.Limit <= 0 {
			return nil, fmt.Errorf("limit %d: need a name and a positive limit", i)
		}
	}
	return limits, nil
}

// LoadLimits reads a limits table from path. An empty path returns the
// built-in table.
func LoadLimits(path string) ([]Limit, error) {
	if path == "" {
		return Limits(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits %s: %w", path, err)
	}
	return ParseLimits(data)
}

// Percentage returns count as a percentage of limit.
func Percentage(count, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(count) / float64(limit) * 100
}

// UsageOf computes the usage of count against every limit, in table order.
func UsageOf(count int, limits []Limit) []Usage {
	out := make([]Usage, len(limits))
	for i, l := range limits {
		out[i] = Usage{Limit: l, Percent: Percentage(count, l.Limit)}
	}
	return out
}

// Visible drops the rows a count overflows.
func Visible(usage []Usage) []Usage {
	var out []Usage
	for _, u := range usage {
		if u.Fits() {
			out = append(out, u)
		}
	}
	return out
}
