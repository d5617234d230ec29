package main

import (
	"fmt"
	"os"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer counts tokens exactly. Implementations wrap third-party
// encoders; Close releases whatever resources they hold.
type Tokenizer interface {
	CountTokens(text string) int
	Name() string
	Close()
}

// TokenizerOptions selects which backend to load.
type TokenizerOptions struct {
	// Type is "tiktoken" or "huggingface".
	Type string
	// Model names the encoding (tiktoken model name or HF hub id).
	Model string
	// File is a local tokenizer.json, huggingface only.
	File string
}

// --- Tiktoken ---

type TiktokenWrapper struct {
	ttk   *tiktoken.Tiktoken
	model string
}

func (w *TiktokenWrapper) CountTokens(text string) int {
	if w.ttk == nil {
		return 0
	}
	return len(w.ttk.EncodeOrdinary(text))
}

func (w *TiktokenWrapper) Name() string {
	return fmt.Sprintf("tiktoken (%s)", w.model)
}

func (w *TiktokenWrapper) Close() {}

// --- HuggingFace (sugarme) ---

type HFTokenizerWrapper struct {
	htk   *hf.Tokenizer
	label string
}

func (w *HFTokenizerWrapper) CountTokens(text string) int {
	if w.htk == nil {
		return 0
	}
	en, err := w.htk.EncodeSingle(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: HF tokenizer failed to encode text: %v\n", err)
		return 0
	}
	return len(en.Tokens)
}

func (w *HFTokenizerWrapper) Name() string {
	return fmt.Sprintf("huggingface (%s)", w.label)
}

func (w *HFTokenizerWrapper) Close() {}

// --- Loading ---

const defaultTiktokenModel = "gpt-4o"
const defaultHFModel = "gpt2"

// loadTokenizer returns a tokenizer for the given options. The caller
// treats a failure as non-fatal and falls back to heuristic estimation.
func loadTokenizer(opts TokenizerOptions) (Tokenizer, error) {
	switch strings.ToLower(opts.Type) {
	case "", "tiktoken":
		return loadTiktoken(opts.Model)
	case "huggingface":
		return loadHuggingFace(opts.Model, opts.File)
	default:
		return nil, fmt.Errorf("unsupported tokenizer type: %s. Use 'tiktoken' or 'huggingface'", opts.Type)
	}
}

func loadTiktoken(model string) (Tokenizer, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Tiktoken model '%s' not found, falling back to '%s': %v\n",
			model, defaultTiktokenModel, err)
		model = defaultTiktokenModel
		tke, err = tiktoken.EncodingForModel(model)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &TiktokenWrapper{ttk: tke, model: model}, nil
}

func loadHuggingFace(model, file string) (Tokenizer, error) {
	if file != "" {
		ttk, err := pretrained.FromFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", file, err)
		}
		return &HFTokenizerWrapper{htk: ttk, label: file}, nil
	}

	if model == "" {
		model = defaultHFModel
	}
	fmt.Fprintf(os.Stderr, "Loading HuggingFace tokenizer for model: %s (this may download files)\n", model)

	configFilePath, err := hf.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache path for model %s: %w", model, err)
	}
	ttk, err := pretrained.FromFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pretrained tokenizer for model %s (from %s): %w", model, configFilePath, err)
	}
	return &HFTokenizerWrapper{htk: ttk, label: model}, nil
}
