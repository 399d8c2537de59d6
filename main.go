package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jadenpxrk/fileconcat/internal/config"
	"github.com/jadenpxrk/fileconcat/internal/logging"
)

var (
	// Filtering
	includePatterns string
	ignorePatterns  string
	maxFileSizeMB   float64
	showHidden      bool
	keepBinary      bool
	noIgnore        bool

	// Output
	outputFormat     string
	chunkSizeKB      int
	outputFile       string
	copyToClipboard  bool
	pdfOutputFile    string
	showLineNumbers  bool
	removeEmptyLines bool

	// Processing
	numThreads int
	linkDepth  int

	// Token counting
	tokenizerType  string
	tokenizerModel string
	tokenizerFile  string
	limitsFile     string

	interactiveMode bool
	debug           bool
	cfgFile         string

	logger = zap.NewNop()
)

// version is the application version, set via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fileconcat [PATH|URL ...]",
	Short: "Concatenate a codebase into LLM-ready context documents.",
	Long: `fileconcat collects files from local directories, git repositories and web
pages, filters them with include and ignore patterns, and writes one or more
documents with the project structure and file contents, sized for a model's
context window.`,
	Version:       version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.Setup(debug, "fileconcat", version)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return config.Init(viper.GetViper(), cfgFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args)
	},
}

func init() {
	def := config.Default()
	flags := rootCmd.Flags()

	// Filtering
	flags.StringVarP(&includePatterns, "include", "i", def.IncludePatterns, "Patterns to include (comma-separated, overrides ignore patterns)")
	viper.BindPFlag("includePatterns", flags.Lookup("include"))
	flags.StringVarP(&ignorePatterns, "ignore", "e", def.IgnorePatterns, "Patterns to ignore (comma-separated)")
	viper.BindPFlag("ignorePatterns", flags.Lookup("ignore"))
	flags.Float64VarP(&maxFileSizeMB, "max-size", "s", def.MaxFileSizeMB, "Maximum file size in MB (fractions allowed)")
	viper.BindPFlag("maxFileSizeMB", flags.Lookup("max-size"))
	flags.BoolVarP(&showHidden, "hidden", "H", false, "Include hidden files")
	flags.BoolVar(&keepBinary, "binary", false, "Include files with binary extensions")
	flags.BoolVar(&noIgnore, "no-ignore", false, "Don't respect .gitignore files")

	// Output
	flags.StringVar(&outputFormat, "format", def.DefaultOutputFormat, "Output format: single, multi or auto")
	viper.BindPFlag("defaultOutputFormat", flags.Lookup("format"))
	flags.IntVar(&chunkSizeKB, "chunk-size", def.ChunkSizeKB, "Maximum size of each part in multi output, in KB")
	viper.BindPFlag("chunkSizeKB", flags.Lookup("chunk-size"))
	flags.StringVarP(&outputFile, "file", "f", "", "Save output to a file, or to a directory for multi output")
	flags.BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy output to clipboard")
	flags.StringVar(&pdfOutputFile, "pdf", "", "Save output as PDF")
	flags.BoolVar(&showLineNumbers, "line-numbers", def.ShowLineNumbers, "Prefix file lines with line numbers")
	viper.BindPFlag("showLineNumbers", flags.Lookup("line-numbers"))
	flags.BoolVar(&removeEmptyLines, "remove-empty-lines", def.RemoveEmptyLines, "Drop blank lines from file contents")
	viper.BindPFlag("removeEmptyLines", flags.Lookup("remove-empty-lines"))

	// Processing
	flags.IntVarP(&numThreads, "threads", "t", 0, "Number of parallel readers (0 for auto)")
	flags.IntVar(&linkDepth, "link-depth", 0, "Follow links on the same host this many levels deep for web URLs")

	// Token counting
	flags.StringVar(&tokenizerType, "tokenizer", def.Tokenizer, "Tokenizer to use: tiktoken, huggingface or none")
	viper.BindPFlag("tokenizer", flags.Lookup("tokenizer"))
	flags.StringVar(&tokenizerModel, "model", def.Model, "Model name for the tokenizer (e.g. gpt-4o, gpt2)")
	viper.BindPFlag("model", flags.Lookup("model"))
	flags.StringVar(&tokenizerFile, "tokenizer-file", "", "Path to a local tokenizer.json")
	rootCmd.PersistentFlags().StringVar(&limitsFile, "limits", "", "YAML file with model context limits")

	flags.BoolVar(&interactiveMode, "interactive", false, "Toggle files interactively before output")

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/fileconcat/config.toml)")

	rootCmd.AddCommand(configCmd, limitsCmd)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if syncErr := logging.Sync(logger); syncErr != nil {
		fmt.Fprintf(os.Stderr, "Logger sync failed: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
