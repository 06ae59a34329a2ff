package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/wordcue/internal/transcript"
)

// implements Transcriber using the OpenAI Audio API with word timestamps
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// word from the verbose_json response
type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// segment from the verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Words    []whisperWord    `json:"words"`
	Segments []whisperSegment `json:"segments"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderOpenAI)
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Model() string {
	return t.model
}

// transcribes a local audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (transcript.Transcript, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, recognitionError(ProviderOpenAI, err)
	}

	return parseVerboseJSONResponse(resp.RawJSON())
}

// parseVerboseJSONResponse groups word timestamps into sentences using
// the segment list of the same response.
func parseVerboseJSONResponse(rawJSON string) (transcript.Transcript, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(resp.Words) == 0 {
		if strings.TrimSpace(resp.Text) != "" {
			return nil, fmt.Errorf("response has text but no word timestamps")
		}
		return transcript.Transcript{}, nil
	}

	return groupWords(resp.Words, resp.Segments), nil
}

// Each word goes to the first segment that has not ended by the word's
// start; words after the last segment stay in it. Segment text supplies
// the punctuation whisper strips from words.
func groupWords(words []whisperWord, segments []whisperSegment) transcript.Transcript {
	if len(segments) == 0 {
		sentence := transcript.Sentence{Words: make([]transcript.WordToken, 0, len(words))}
		for _, w := range words {
			sentence.Words = append(sentence.Words, wordToken(w))
		}
		return transcript.Transcript{sentence}
	}

	out := make(transcript.Transcript, len(segments))
	si := 0
	for _, w := range words {
		for si < len(segments)-1 && w.Start >= segments[si].End {
			si++
		}
		out[si].Words = append(out[si].Words, wordToken(w))
	}

	for i := range out {
		attachPunctuation(segments[i].Text, out[i].Words)
	}
	return out
}

func wordToken(w whisperWord) transcript.WordToken {
	return transcript.WordToken{
		BeginTime: secondsToMillis(w.Start),
		EndTime:   secondsToMillis(w.End),
		Text:      transcript.String(strings.TrimSpace(w.Word)),
	}
}

// attachPunctuation finds each word in text in order and records the
// punctuation that directly follows it.
func attachPunctuation(text string, words []transcript.WordToken) {
	cursor := 0
	for i := range words {
		w := words[i].Text.Raw()
		if w == "" {
			continue
		}
		idx := strings.Index(text[cursor:], w)
		if idx < 0 {
			continue
		}
		cursor += idx + len(w)

		end := cursor
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsPunct(r) {
				break
			}
			end += size
		}
		if end > cursor {
			p := transcript.String(text[cursor:end])
			words[i].Punctuation = &p
			cursor = end
		}
	}
}

func secondsToMillis(s float64) int64 {
	if s <= 0 {
		return 0
	}
	return int64(math.Round(s * 1000))
}
