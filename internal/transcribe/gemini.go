package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/mgpai22/wordcue/internal/audio"
	"github.com/mgpai22/wordcue/internal/transcript"
)

// implements Transcriber using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTranscriber) Model() string {
	return t.model
}

// transcribes a local file or a remote http(s)/gs locator
func (t *GeminiTranscriber) Transcribe(ctx context.Context, locator string) (transcript.Transcript, error) {
	var audioPart *genai.Part

	if audio.IsRemote(locator) {
		audioPart = genai.NewPartFromURI(locator, audio.MIMEType(locator))
	} else {
		if _, err := os.Stat(locator); os.IsNotExist(err) {
			return nil, fmt.Errorf("audio file not found: %s", locator)
		}

		uploaded, err := t.client.Files.UploadFromPath(ctx, locator, nil)
		if err != nil {
			return nil, recognitionError(ProviderGemini, err)
		}
		defer func() {
			_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploaded.Name, nil)
		}()

		audioPart = genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		audioPart,
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, recognitionError(ProviderGemini, err)
	}

	return parseTranscriptionResponse(result)
}

// creates the prompt for word-level transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a word-level transcript of this audio. ")
	sb.WriteString("Split the speech into sentences. ")
	sb.WriteString("Format your response as a JSON array where each element is an object with a 'words' array. ")
	sb.WriteString("Each word is an object with 'begin_time' and 'end_time' as integer milliseconds from the start of the audio, ")
	sb.WriteString("'text' with the spoken word, and 'punctuation' with any punctuation that follows the word (omit it when there is none). ")

	if t.options.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", t.options.Language))
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

func parseTranscriptionResponse(result *genai.GenerateContentResponse) (transcript.Transcript, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	if sb.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return extractTranscript(cleanJSONResponse(sb.String()))
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractTranscript finds the first JSON value in s that holds a
// transcript with at least one word. Models sometimes wrap the array in
// an object or surround it with prose, so both are searched.
func extractTranscript(s string) (transcript.Transcript, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}

		if t, ok := findTranscript(gjson.ParseBytes(raw)); ok {
			return t, nil
		}
		i += int(dec.InputOffset()) - 1
	}

	return nil, fmt.Errorf("no word-level transcript found in response (response: %s)", truncateString(s, 200))
}

func findTranscript(value gjson.Result) (transcript.Transcript, bool) {
	switch {
	case value.IsArray():
		t, err := transcript.Parse([]byte(value.Raw))
		if err == nil && t.WordCount() > 0 {
			return t, true
		}
	case value.IsObject():
		var found transcript.Transcript
		value.ForEach(func(_, v gjson.Result) bool {
			if t, ok := findTranscript(v); ok {
				found = t
				return false
			}
			return true
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
