package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/wordcue/internal/logging"
)

// single text item to translate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Result, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request
	Concurrency    int // batches in flight
}

// completer sends one prompt to a model and returns its text reply.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// model used when Options.Model is empty
func DefaultModel(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOpenAI:
		return "gpt-5-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5"
	default:
		return ""
	}
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
	logger *logging.Logger,
) (*BatchTranslator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	var (
		backend completer
		err     error
	)
	switch provider {
	case ProviderGemini:
		backend, err = newGeminiBackend(ctx, apiKey, opts.Model)
	case ProviderOpenAI:
		backend = newOpenAIBackend(apiKey, opts.Model)
	case ProviderAnthropic:
		backend = newAnthropicBackend(apiKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	return newBatchTranslator(backend, opts, logger), nil
}
