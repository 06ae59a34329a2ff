package translate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mgpai22/wordcue/internal/subtitle"
)

type upperTranslator struct {
	seen []Item
	err  error
}

func (u *upperTranslator) Translate(ctx context.Context, items []Item) ([]Result, error) {
	u.seen = items
	if u.err != nil {
		return nil, u.err
	}
	out := make([]Result, len(items))
	for i, item := range items {
		out[i] = Result{Index: item.Index, Text: strings.ToUpper(item.Text)}
	}
	return out, nil
}

func TestCues(t *testing.T) {
	cues := []subtitle.Cue{
		{Index: 1, Start: 0, End: 100, Text: "hello"},
		{Index: 2, Start: 100, End: 200, Text: ""},
		{Index: 3, Start: 200, End: 300, Text: "bye"},
	}

	tr := &upperTranslator{}
	got, err := Cues(context.Background(), tr, cues, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []subtitle.Cue{
		{Index: 1, Start: 0, End: 100, Text: "HELLO"},
		{Index: 2, Start: 100, End: 200, Text: ""},
		{Index: 3, Start: 200, End: 300, Text: "BYE"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Cues = %+v, want %+v", got, want)
	}
	if len(tr.seen) != 2 {
		t.Errorf("empty cues should not be sent, sent %d items", len(tr.seen))
	}
	if cues[0].Text != "hello" {
		t.Error("input cues must not be modified")
	}
}

func TestCuesOverlay(t *testing.T) {
	cues := []subtitle.Cue{{Index: 1, Start: 0, End: 100, Text: "hola"}}
	got, err := Cues(context.Background(), &upperTranslator{}, cues, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Text != "HOLA\nhola" {
		t.Errorf("overlay text = %q", got[0].Text)
	}
}

func TestCuesError(t *testing.T) {
	want := errors.New("quota")
	_, err := Cues(context.Background(), &upperTranslator{err: want}, []subtitle.Cue{{Text: "x"}}, false)
	if !errors.Is(err, want) {
		t.Errorf("expected translator error, got %v", err)
	}
}
