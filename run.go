package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jadenpxrk/fileconcat/internal/chunk"
	"github.com/jadenpxrk/fileconcat/internal/classify"
	"github.com/jadenpxrk/fileconcat/internal/config"
	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/render"
	"github.com/jadenpxrk/fileconcat/internal/session"
	"github.com/jadenpxrk/fileconcat/internal/sink"
	"github.com/jadenpxrk/fileconcat/internal/source"
	"github.com/jadenpxrk/fileconcat/internal/tokens"
)

// loadConfig reads the settings and applies the flags viper cannot bind
// directly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, migrated, err := config.Read(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	if migrated {
		if path := viper.ConfigFileUsed(); path != "" {
			if err := config.Save(path, cfg); err != nil {
				logger.Warn("Failed to save migrated config", zap.Error(err))
			} else {
				logger.Info("Migrated config", zap.String("path", path), zap.Int("version", config.Version))
			}
		}
	}
	flags := cmd.Flags()
	if flags.Changed("hidden") {
		cfg.ExcludeHiddenFiles = !showHidden
	}
	if flags.Changed("binary") {
		cfg.ExcludeBinaryFiles = !keepBinary
	}
	return cfg, cfg.Validate()
}

func workers() int {
	if numThreads > 0 {
		return numThreads
	}
	return runtime.NumCPU()
}

// skipRead reports files whose content the classifier will reject anyway.
// Files matched by an include pattern are always read, since include
// overrides the size and binary checks. prefix is the directory the
// source's records end up under.
func skipRead(cfg config.Config, prefix string) source.SkipFunc {
	sc := cfg.Session()
	limit := sc.Options.SizeLimit()
	rules := sc.Rules()
	return func(path string, size int64) bool {
		full := path
		if prefix != "" {
			full = prefix + "/" + path
		}
		if rules.Included(full) {
			return false
		}
		return size > limit || (cfg.ExcludeBinaryFiles && classify.IsBinary(path))
	}
}

// sourceCount is the number of providers inputs map to.
func sourceCount(inputs []string) int {
	n, web := 0, false
	for _, in := range inputs {
		if source.IsWebURL(in) {
			web = true
			continue
		}
		n++
	}
	if web {
		n++
	}
	return n
}

// providers maps every input to a source. Web URLs share one provider.
// With more than one source, records are placed below the input's name so
// paths stay unique.
func providers(inputs []string, cfg config.Config) ([]source.Provider, []string, error) {
	rules := cfg.Session().Rules()
	fs := afero.NewOsFs()
	multi := sourceCount(inputs) > 1
	prefixOf := func(name string) string {
		if multi {
			return name
		}
		return ""
	}
	var (
		list     []source.Provider
		prefixes []string
		urls     []string
	)
	for _, in := range inputs {
		switch {
		case source.IsRepoURL(in):
			ref, err := source.ParseRepoURL(in)
			if err != nil {
				return nil, nil, err
			}
			prefix := prefixOf(ref.Name)
			list = append(list, &source.Repo{
				Ref:      ref,
				Rules:    rules,
				Workers:  workers(),
				SkipRead: skipRead(cfg, prefix),
				Logger:   logger,
			})
			prefixes = append(prefixes, prefix)
		case source.IsWebURL(in):
			urls = append(urls, in)
		default:
			if !source.IsLocal(fs, in) {
				return nil, nil, fmt.Errorf("path does not exist: %s", in)
			}
			abs, err := filepath.Abs(in)
			if err != nil {
				return nil, nil, err
			}
			prefix := prefixOf(filepath.Base(abs))
			list = append(list, &source.Dir{
				Fs:        fs,
				Root:      abs,
				Rules:     rules,
				Gitignore: !noIgnore,
				Workers:   workers(),
				SkipRead:  skipRead(cfg, prefix),
				Logger:    logger,
			})
			prefixes = append(prefixes, prefix)
		}
	}
	if len(urls) > 0 {
		list = append(list, &source.Web{URLs: urls, Depth: linkDepth, Workers: workers(), Logger: logger})
		prefixes = append(prefixes, "")
	}
	return list, prefixes, nil
}

func fetch(ctx context.Context, inputs []string, cfg config.Config) (fileset.Batch, error) {
	list, prefixes, err := providers(inputs, cfg)
	if err != nil {
		return fileset.Batch{}, err
	}
	batches := make([]fileset.Batch, 0, len(list))
	for i, p := range list {
		b, err := p.Fetch(ctx)
		if err != nil {
			return fileset.Batch{}, err
		}
		batches = append(batches, source.WithPrefix(b, prefixes[i]))
	}
	return source.Merge(batches...), nil
}

// estimate counts the tokens of the included text with the configured
// tokenizer, or the character estimate when there is none.
func estimate(ctx context.Context, s *session.Session, cfg config.Config) (int, error) {
	var tk tokens.Tokenizer
	if !strings.EqualFold(cfg.Tokenizer, "none") {
		var err error
		tk, err = tokens.Load(tokens.Spec{Kind: cfg.Tokenizer, Model: cfg.Model, File: tokenizerFile}, logger)
		if err != nil {
			logger.Warn("Tokenizer unavailable, using character estimate", zap.Error(err))
		} else {
			defer tk.Close()
		}
	}
	return tokens.NewEstimator(tk, logger).Estimate(ctx, s.Text())
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch, err := fetch(ctx, args, cfg)
	if err != nil {
		if errors.Is(err, fileset.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
		return err
	}
	s, err := session.Load(ctx, batch, cfg.Session(), logger)
	if err != nil {
		return err
	}

	if interactiveMode {
		s, err = runInteractive(s)
		if err != nil {
			return err
		}
	}

	entries := s.Included()
	if len(entries) == 0 {
		printSummary(s, 0, errors.New("no files included"), fileset.Single)
		return errors.New("no files to process")
	}

	count, estErr := estimate(ctx, s, cfg)
	if estErr != nil && ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Aborted.")
		return nil
	}
	recommended := tokens.Recommend(count, estErr)
	format := s.Config.Format
	if format == fileset.Auto {
		format = recommended
	}
	docs := s.Documents(format)

	if err := write(s, docs); err != nil {
		return err
	}
	printSummary(s, count, estErr, recommended)
	return nil
}

// write sends docs to the requested sinks, or to stdout when none is given.
func write(s *session.Session, docs []render.Document) error {
	wrote := false
	if pdfOutputFile != "" {
		if err := sink.PDF(pdfOutputFile, docs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "PDF saved to %s\n", pdfOutputFile)
		wrote = true
	}
	if outputFile != "" {
		if len(docs) == 1 && !isDir(outputFile) {
			if err := sink.WriteFile(outputFile, docs[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Output saved to %s\n", outputFile)
		} else {
			paths, err := sink.WriteFiles(outputFile, s.ProjectName(), docs)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(os.Stderr, "Output saved to %s\n", p)
			}
		}
		wrote = true
	}
	if copyToClipboard {
		if len(docs) > 1 {
			fmt.Fprintf(os.Stderr, "Copying part 1 of %d to clipboard; use --file for the rest\n", len(docs))
		}
		if err := sink.Clipboard(docs[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Output copied to clipboard")
		wrote = true
	}
	if !wrote {
		for i, d := range docs {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(render.Render(d))
		}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func printSummary(s *session.Session, count int, estErr error, recommended fileset.Format) {
	st := s.Tree().Stats()
	w := os.Stderr
	fmt.Fprintln(w, "\n--- Summary ---")
	fmt.Fprintf(w, "Files: %d uploaded (%s), %d included (%s), %d excluded (%s)\n",
		st.Uploaded, render.FormatSize(st.UploadedSize),
		st.Included, render.FormatSize(st.IncludedSize),
		st.Excluded, render.FormatSize(st.ExcludedSize))

	switch {
	case errors.Is(estErr, tokens.ErrTooLarge):
		fmt.Fprintln(w, "Tokens: content too large to estimate")
	case estErr != nil:
		fmt.Fprintf(w, "Tokens: unavailable (%v)\n", estErr)
	default:
		fmt.Fprintf(w, "Tokens: ~%d\n", count)
		limits, err := contextLimits()
		if err != nil {
			logger.Warn("Failed to load context limits", zap.Error(err))
		}
		for _, u := range tokens.Visible(tokens.UsageOf(count, limits)) {
			fmt.Fprintf(w, "  %-16s %5.1f%% of %d\n", u.Name, u.Percent, u.Limit.Limit)
		}
	}
	fmt.Fprintf(w, "Recommended format: %s\n", recommended)
	if s.Config.Format == fileset.Multi || recommended == fileset.Multi {
		fmt.Fprintf(w, "Multi output: %s\n", chunkSummary(s))
	}
	if err := s.FailedSummary(5); err != nil {
		fmt.Fprintf(w, "Warning: %v\n", err)
	}
}

func chunkSummary(s *session.Session) string {
	est := chunk.Summary(s.Plan())
	return fmt.Sprintf("%d files, ~%s each", est.Chunks, render.FormatSize(int64(est.AverageBytes)))
}

// contextLimits returns the --limits table, or the built-in one.
func contextLimits() ([]tokens.Limit, error) {
	if limitsFile == "" {
		return tokens.Limits(), nil
	}
	limits, err := tokens.LoadLimits(limitsFile)
	if err != nil {
		return tokens.Limits(), err
	}
	return limits, nil
}
