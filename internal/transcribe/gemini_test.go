package transcribe

import (
	"strings"
	"testing"

	"google.golang.org/genai"
)

const sentenceJSON = `[{"words": [
	{"begin_time": 0, "end_time": 400, "text": "Hello", "punctuation": ","},
	{"begin_time": 400, "end_time": 900, "text": "world"}
]}]`

func TestExtractTranscript(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantWords int
		wantErr   bool
	}{
		{
			name:      "plain valid array",
			input:     sentenceJSON,
			wantWords: 2,
		},
		{
			name:      "preamble with valid array",
			input:     "Here is the JSON transcript:\n" + sentenceJSON,
			wantWords: 2,
		},
		{
			name:      "valid array with trailing text",
			input:     sentenceJSON + "\nI hope this helps!",
			wantWords: 2,
		},
		{
			name:      "wrapper object",
			input:     `{"sentences": ` + sentenceJSON + `}`,
			wantWords: 2,
		},
		{
			name:      "nested wrapper object",
			input:     `{"response": {"transcript": ` + sentenceJSON + `}}`,
			wantWords: 2,
		},
		{
			name:      "unrelated object first then transcript array",
			input:     `{"status": "ok", "count": 5}` + "\n" + sentenceJSON,
			wantWords: 2,
		},
		{
			name:      "multiple arrays picks first valid",
			input:     "[1, 2, 3]\n" + sentenceJSON,
			wantWords: 2,
		},
		{
			name: "byte-valued text",
			input: `[{"words": [
				{"begin_time": 0, "end_time": 100, "text": [104, 105]}
			]}]`,
			wantWords: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "sentences without words",
			input:   `[{"words": []}, {}]`,
			wantErr: true,
		},
		{
			name:    "segment-level output is rejected",
			input:   `[{"start": 0.0, "end": 2.0, "text": "no words"}]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text with no JSON content.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"words": [{"begin_time": 0, "end_time": 1, "text": "x"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractTranscript(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.WordCount() != tt.wantWords {
				t.Errorf("got %d words, want %d", got.WordCount(), tt.wantWords)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"words": []}]`,
			want:  `[{"words": []}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"words\": []}]\n```",
			want:  `[{"words": []}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"words\": []}]\n```",
			want:  `[{"words": []}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[1]\n```\n\n  ",
			want:  `[1]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTranscriptionResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText("```json\n"+sentenceJSON+"\n```", genai.RoleModel),
		}},
	}
	got, err := parseTranscriptionResponse(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.WordCount() != 2 {
		t.Errorf("got %d words, want 2", got.WordCount())
	}

	if _, err := parseTranscriptionResponse(nil); err == nil {
		t.Error("expected error for nil response")
	}
	if _, err := parseTranscriptionResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}); err == nil {
		t.Error("expected error for response without text")
	}
}

func TestBuildTranscriptionPrompt(t *testing.T) {
	tr := &GeminiTranscriber{options: Options{Language: "zh", Prompt: "Speaker is a lecturer."}}
	prompt := tr.buildTranscriptionPrompt()

	for _, want := range []string{"begin_time", "end_time", "punctuation", "The audio is in zh.", "Speaker is a lecturer."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
