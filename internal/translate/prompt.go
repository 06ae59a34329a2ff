package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle lines to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle lines to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("Rules:\n")
	sb.WriteString("1. Translate only the text, keeping the meaning and tone of speech.\n")
	sb.WriteString("2. Keep line breaks in the same positions.\n")
	sb.WriteString("3. Return ONLY a JSON array of objects with 'index' and 'text' fields.\n")
	sb.WriteString("4. Return exactly one object per input object, with the same 'index'.\n")
	sb.WriteString("5. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixInvalidEscapes doubles backslashes that do not start a valid JSON
// escape, such as the \N line break some subtitle formats use.
func fixInvalidEscapes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			sb.WriteByte('\\')
		default:
			sb.WriteString("\\\\")
		}
		sb.WriteByte(next)
		i++
	}

	return sb.String()
}

// extractResults finds the first JSON array of {index, text} objects in
// text, looking inside wrapper objects and skipping surrounding prose.
func extractResults(text string) ([]Result, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if results, ok := findResults(gjson.ParseBytes(raw)); ok {
			return results, nil
		}
		i += int(dec.InputOffset()) - 1
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

func findResults(value gjson.Result) ([]Result, bool) {
	switch {
	case value.IsArray():
		var results []Result
		if err := json.Unmarshal([]byte(value.Raw), &results); err == nil && hasText(results) {
			return results, true
		}
	case value.IsObject():
		var found []Result
		value.ForEach(func(_, v gjson.Result) bool {
			if results, ok := findResults(v); ok {
				found = results
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

func hasText(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
