package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
	"github.com/stretchr/testify/require"
)

func rec(path string, size int64) fileset.Record {
	return fileset.Record{Path: path, Size: size, Read: true}
}

func TestClassifyOrder(t *testing.T) {
	opts := Options{MaxFileSizeMB: 1, ExcludeHiddenFiles: true, ExcludeBinaryFiles: true}
	none := pattern.Rules{}

	cases := []struct {
		name   string
		rec    fileset.Record
		rules  pattern.Rules
		in     bool
		reason string
	}{
		{"plain", rec("src/a.ts", 50), none, true, ""},
		{"too large", rec("big.txt", 2<<20), none, false, "File size exceeds 1MB limit"},
		{"hidden", rec(".env", 10), none, false, ReasonHidden},
		{"hidden in dir", rec("cfg/.secret", 10), none, false, ReasonHidden},
		{"binary", rec("logo.PNG", 10), none, false, ReasonBinary},
		{"size before hidden", rec(".big", 2<<20), none, false, "File size exceeds 1MB limit"},
		{"ignored", rec("README.md", 50), pattern.NewRules("", "*.md"), false, ReasonIgnored},
		{"ignore before size", rec("huge.md", 2<<20), pattern.NewRules("", "*.md"), false, ReasonIgnored},
		{"include filter", rec("a.ts", 1), pattern.NewRules("*.go", ""), false, ReasonIncludeFilter},
		{"include beats ignore", rec("a.go", 1), pattern.NewRules("*.go", "*.go"), true, ""},
		{"include skips builtins", rec(".hidden.go", 2<<20), pattern.NewRules("*.go", ""), true, ""},
		{"include by segment", rec(".nx/cache/x.bin", 1), pattern.NewRules(".nx", ".nx"), true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Classify(tc.rec, opts, tc.rules)
			require.Equal(t, tc.rec.Path, v.Path)
			require.Equal(t, tc.in, v.Included)
			require.Equal(t, tc.reason, v.Reason)
			require.False(t, v.ForceInclude)
		})
	}
}

func TestClassifyOptionsOff(t *testing.T) {
	opts := Options{MaxFileSizeMB: 1}
	require.True(t, Classify(rec(".env", 1), opts, pattern.Rules{}).Included)
	require.True(t, Classify(rec("a.zip", 1), opts, pattern.Rules{}).Included)
}

func TestClassifyBinaryContent(t *testing.T) {
	blob := fileset.Record{Path: "blob.dat", Size: 5, Binary: true}

	v := Classify(blob, Options{MaxFileSizeMB: 1}, pattern.Rules{})
	require.False(t, v.Included)
	require.Equal(t, ReasonBinary, v.Reason)

	v = Classify(blob, DefaultOptions(), pattern.NewRules("*.dat", ""))
	require.False(t, v.Included)
	require.Equal(t, ReasonBinary, v.Reason)

	v = Classify(rec("big.log", 2<<20), DefaultOptions(), pattern.NewRules("*.log", ""))
	require.True(t, v.Included)
	require.Empty(t, v.Reason)
}

func TestSizeReasonFraction(t *testing.T) {
	opts := Options{MaxFileSizeMB: 0.5}
	require.Equal(t, int64(512*1024), opts.SizeLimit())
	v := Classify(rec("mid.txt", 600*1024), opts, pattern.Rules{})
	require.Equal(t, "File size exceeds 0.5MB limit", v.Reason)
	require.Equal(t, "File size exceeds 32MB limit", SizeReason(32))
}

func TestClassifyDeterministic(t *testing.T) {
	opts := DefaultOptions()
	rules := pattern.NewRules("", pattern.DefaultIgnoreString)
	for _, p := range []string{"a.go", ".env", "x/y.min.js", "node_modules/z.js", "i.png"} {
		require.Equal(t, Classify(rec(p, 5), opts, rules), Classify(rec(p, 5), opts, rules))
	}
}

func TestAll(t *testing.T) {
	records := []fileset.Record{rec("a.go", 1), rec(".env", 1)}
	verdicts, err := All(context.Background(), records, DefaultOptions(), pattern.Rules{})
	require.NoError(t, err)
	require.Len(t, verdicts, 2)
	require.True(t, verdicts[0].Included)
	require.Equal(t, ReasonHidden, verdicts[1].Reason)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	verdicts, err = All(ctx, records, DefaultOptions(), pattern.Rules{})
	require.Nil(t, verdicts)
	require.True(t, errors.Is(err, fileset.ErrAborted))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestForce(t *testing.T) {
	v := Classify(rec(".env", 1), DefaultOptions(), pattern.Rules{})
	forced := Force(v, true)
	require.True(t, forced.Included)
	require.True(t, forced.ForceInclude)
	require.NotEmpty(t, forced.Reason)

	back := Force(forced, false)
	require.False(t, back.Included)
	require.False(t, back.ForceInclude)
	require.NotEmpty(t, back.Reason)
}

func TestIsBinary(t *testing.T) {
	require.True(t, IsBinary("a/b/c.WOFF2"))
	require.False(t, IsBinary("Makefile"))
	require.False(t, IsBinary("main.go"))
}
