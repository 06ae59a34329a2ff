package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"google.golang.org/genai"

	"github.com/mgpai22/wordcue/internal/transcript"
)

// interface for audio transcription; one blocking request per call
type Transcriber interface {
	Transcribe(ctx context.Context, audio string) (transcript.Transcript, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderFile   Provider = "file"
)

// transcription options
type Options struct {
	Language string // language hint, e.g. "zh" or "en"
	Model    string
	Prompt   string
}

// ErrRecognitionFailure matches every *RecognitionError.
var ErrRecognitionFailure = errors.New("recognition failure")

// RecognitionError carries a provider's failure back to the caller
// unchanged. Nothing in this package retries.
type RecognitionError struct {
	Provider Provider
	Status   int // HTTP status when the vendor returned one
	Message  string
	Err      error
}

func (e *RecognitionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s recognition failed (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s recognition failed: %s", e.Provider, e.Message)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

func (e *RecognitionError) Is(target error) bool {
	return target == ErrRecognitionFailure
}

// recognitionError pulls status and message out of the SDK error types.
func recognitionError(provider Provider, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	rerr := &RecognitionError{Provider: provider, Err: err}

	var openaiErr *openai.Error
	var geminiErr genai.APIError
	switch {
	case errors.As(err, &openaiErr):
		rerr.Status = openaiErr.StatusCode
		rerr.Message = openaiErr.Message
	case errors.As(err, &geminiErr):
		rerr.Status = geminiErr.Code
		rerr.Message = geminiErr.Message
	}
	if rerr.Message == "" {
		rerr.Message = err.Error()
	}
	return rerr
}

// model used when Options.Model is empty
func DefaultModel(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return "whisper-1"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return ""
	}
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderOpenAI:
		t, err := NewOpenAITranscriber(ctx, apiKey, opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ProviderGemini:
		t, err := NewGeminiTranscriber(ctx, apiKey, opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ProviderFile:
		return NewFileTranscriber(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
