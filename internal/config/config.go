// Package config loads, validates, migrates and persists user settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jadenpxrk/fileconcat/internal/chunk"
	"github.com/jadenpxrk/fileconcat/internal/classify"
	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
	"github.com/jadenpxrk/fileconcat/internal/render"
	"github.com/jadenpxrk/fileconcat/internal/session"
	"github.com/jadenpxrk/fileconcat/internal/tokens"
)

// Version is the current settings schema version.
const Version = 2

// EnvPrefix prefixes environment overrides, e.g. FILECONCAT_MAXFILESIZEMB.
const EnvPrefix = "FILECONCAT"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the persisted user configuration.
type Config struct {
	Version             int     `mapstructure:"version"`
	MaxFileSizeMB       float64 `mapstructure:"maxFileSizeMB"`
	IncludePatterns     string  `mapstructure:"includePatterns"`
	IgnorePatterns      string  `mapstructure:"ignorePatterns"`
	RemoveEmptyLines    bool    `mapstructure:"removeEmptyLines"`
	ShowLineNumbers     bool    `mapstructure:"showLineNumbers"`
	DefaultOutputFormat string  `mapstructure:"defaultOutputFormat"`

	ExcludeHiddenFiles bool   `mapstructure:"excludeHiddenFiles"`
	ExcludeBinaryFiles bool   `mapstructure:"excludeBinaryFiles"`
	ChunkSizeKB        int    `mapstructure:"chunkSizeKB"`
	Tokenizer          string `mapstructure:"tokenizer"`
	Model              string `mapstructure:"model"`
}

// Default returns the factory settings.
func Default() Config {
	return Config{
		Version:             Version,
		MaxFileSizeMB:       32,
		IgnorePatterns:      pattern.DefaultIgnoreString,
		DefaultOutputFormat: string(fileset.Single),
		ExcludeHiddenFiles:  true,
		ExcludeBinaryFiles:  true,
		ChunkSizeKB:         chunk.DefaultMaxBytes / 1024,
		Tokenizer:           "tiktoken",
		Model:               tokens.DefaultTiktokenModel,
	}
}

// Keys lists the settings in display order.
var Keys = []string{
	"version", "maxFileSizeMB", "includePatterns", "ignorePatterns",
	"removeEmptyLines", "showLineNumbers", "defaultOutputFormat",
	"excludeHiddenFiles", "excludeBinaryFiles", "chunkSizeKB",
	"tokenizer", "model",
}

// Map flattens c into its persisted keys.
func (c Config) Map() map[string]any {
	return map[string]any{
		"version":             c.Version,
		"maxFileSizeMB":       c.MaxFileSizeMB,
		"includePatterns":     c.IncludePatterns,
		"ignorePatterns":      c.IgnorePatterns,
		"removeEmptyLines":    c.RemoveEmptyLines,
		"showLineNumbers":     c.ShowLineNumbers,
		"defaultOutputFormat": c.DefaultOutputFormat,
		"excludeHiddenFiles":  c.ExcludeHiddenFiles,
		"excludeBinaryFiles":  c.ExcludeBinaryFiles,
		"chunkSizeKB":         c.ChunkSizeKB,
		"tokenizer":           c.Tokenizer,
		"model":               c.Model,
	}
}

// Validate checks the fields that can hold bad values.
func (c Config) Validate() error {
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("%w: maxFileSizeMB must be positive, got %g", ErrInvalid, c.MaxFileSizeMB)
	}
	if c.ChunkSizeKB <= 0 {
		return fmt.Errorf("%w: chunkSizeKB must be positive, got %d", ErrInvalid, c.ChunkSizeKB)
	}
	if _, err := fileset.ParseFormat(c.DefaultOutputFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.Tokenizer) {
	case "tiktoken", "huggingface", "hf", "none":
	default:
		return fmt.Errorf("%w: unknown tokenizer %q", ErrInvalid, c.Tokenizer)
	}
	return nil
}

// Session converts the settings into the record the core consumes.
func (c Config) Session() session.Config {
	format, _ := fileset.ParseFormat(c.DefaultOutputFormat)
	return session.Config{
		Options: classify.Options{
			MaxFileSizeMB:      c.MaxFileSizeMB,
			ExcludeHiddenFiles: c.ExcludeHiddenFiles,
			ExcludeBinaryFiles: c.ExcludeBinaryFiles,
		},
		Include:    c.IncludePatterns,
		Ignore:     c.IgnorePatterns,
		Format:     format,
		ChunkBytes: c.ChunkSizeKB * 1024,
		TransformOpts: render.TransformOptions{
			RemoveEmptyLines: c.RemoveEmptyLines,
			ShowLineNumbers:  c.ShowLineNumbers,
		},
	}
}

// DefaultPath returns ~/.config/fileconcat/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fileconcat", "config.toml"), nil
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range Default().Map() {
		v.SetDefault(k, val)
	}
}

// Init points v at the config file, either file or the default location,
// and enables environment overrides.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		v.AddConfigPath(filepath.Join(home, ".config", "fileconcat"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return nil
}

// Read loads the config file if there is one. A missing file is not an
// error; a file from an older schema is migrated and reported through
// migrated so the caller can persist it.
func Read(v *viper.Viper) (cfg Config, migrated bool, err error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, false, fmt.Errorf("read config: %w", err)
		}
	}

	outdated := v.InConfig("version") && v.GetInt("version") != Version
	if outdated || v.InConfig("customIgnorePatterns") {
		if err := v.MergeConfigMap(Migrate(v).Map()); err != nil {
			return Config{}, false, fmt.Errorf("migrate config: %w", err)
		}
		migrated = true
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, false, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, false, err
	}
	return cfg, migrated, nil
}

// Migrate converts a version 1 document: maxFileSizeMB and
// defaultOutputFormat carry over, the customIgnorePatterns array becomes
// the ignorePatterns string, and everything else resets to defaults.
func Migrate(v *viper.Viper) Config {
	cfg := Default()
	if n := v.GetFloat64("maxFileSizeMB"); n > 0 {
		cfg.MaxFileSizeMB = n
	}
	if f := v.GetString("defaultOutputFormat"); f != "" {
		cfg.DefaultOutputFormat = f
	}
	if v.IsSet("customIgnorePatterns") {
		cfg.IgnorePatterns = strings.Join(v.GetStringSlice("customIgnorePatterns"), ", ")
	}
	return cfg
}

// Save writes cfg to path, creating its directory. The format follows the
// file extension (toml, json or yaml).
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	out := viper.New()
	for k, val := range cfg.Map() {
		out.Set(k, val)
	}
	if err := out.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a standalone settings file, migrating older versions.
func ReadFile(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	cfg, _, err := Read(v)
	return cfg, err
}
