package translate

import (
	"context"
	"strings"

	"github.com/mgpai22/wordcue/internal/subtitle"
)

// Cues translates the text of every non-empty cue and returns a new slice
// with the same timing. With overlay set each cue holds the translation
// followed by the original on the next line.
func Cues(ctx context.Context, tr Translator, cues []subtitle.Cue, overlay bool) ([]subtitle.Cue, error) {
	items := make([]Item, 0, len(cues))
	for i, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		items = append(items, Item{Index: i, Text: cue.Text})
	}

	out := make([]subtitle.Cue, len(cues))
	copy(out, cues)
	if len(items) == 0 {
		return out, nil
	}

	results, err := tr.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Index < 0 || r.Index >= len(out) {
			continue
		}
		if overlay {
			out[r.Index].Text = r.Text + "\n" + cues[r.Index].Text
		} else {
			out[r.Index].Text = r.Text
		}
	}
	return out, nil
}
