package tokens

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	"go.uber.org/zap"
)

// Tokenizer counts the tokens of a text. Close releases whatever the
// implementation holds.
type Tokenizer interface {
	CountTokens(text string) (int, error)
	Close()
}

const (
	DefaultTiktokenModel = "gpt-4o"
	DefaultHFModel       = "gpt2"
)

// Tiktoken counts tokens with an OpenAI BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func (t *Tiktoken) CountTokens(text string) (int, error) {
	if t.enc == nil {
		return 0, fmt.Errorf("tiktoken encoding not loaded")
	}
	return len(t.enc.EncodeOrdinary(text)), nil
}

// Close is a no-op; tiktoken-go holds no external resources.
func (t *Tiktoken) Close() {}

// HuggingFace counts tokens with a tokenizer.json definition.
type HuggingFace struct {
	tk *hf.Tokenizer
}

func (h *HuggingFace) CountTokens(text string) (int, error) {
	if h.tk == nil {
		return 0, fmt.Errorf("huggingface tokenizer not loaded")
	}
	en, err := h.tk.EncodeSingle(text)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	return len(en.Tokens), nil
}

func (h *HuggingFace) Close() {}

// Spec selects and configures a tokenizer.
type Spec struct {
	Kind  string // "tiktoken" or "huggingface"
	Model string
	File  string // Local tokenizer.json, huggingface only
}

// Load builds the tokenizer described by spec.
func Load(spec Spec, logger *zap.Logger) (Tokenizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Initializing tokenizer",
		zap.String("kind", spec.Kind),
		zap.String("model", spec.Model),
		zap.String("file", spec.File))

	switch strings.ToLower(spec.Kind) {
	case "", "tiktoken":
		return loadTiktoken(spec.Model, logger)
	case "huggingface", "hf":
		return loadHuggingFace(spec, logger)
	default:
		return nil, fmt.Errorf("unsupported tokenizer type %q, use tiktoken or huggingface", spec.Kind)
	}
}

func loadTiktoken(model string, logger *zap.Logger) (Tokenizer, error) {
	if model == "" {
		model = DefaultTiktokenModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("Tiktoken model not found, using default",
			zap.String("model", model),
			zap.String("default", DefaultTiktokenModel),
			zap.Error(err))
		enc, err = tiktoken.EncodingForModel(DefaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("tiktoken encoding for %s: %w", DefaultTiktokenModel, err)
		}
	}
	return &Tiktoken{enc: enc}, nil
}

func loadHuggingFace(spec Spec, logger *zap.Logger) (Tokenizer, error) {
	path := spec.File
	if path == "" {
		model := spec.Model
		if model == "" {
			model = DefaultHFModel
		}
		logger.Info("Resolving HuggingFace tokenizer, this may download files", zap.String("model", model))
		cached, err := hf.CachedPath(model, "tokenizer.json")
		if err != nil {
			return nil, fmt.Errorf("cache path for model %s: %w", model, err)
		}
		path = cached
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer from %s: %w", path, err)
	}
	return &HuggingFace{tk: tk}, nil
}
