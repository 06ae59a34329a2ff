package subtitle

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseSRT(t *testing.T) {
	content := "\ufeff1\n" +
		"00:00:01,000 --> 00:00:04,000\n" +
		"Hello, world!\n" +
		"\n" +
		"2\n" +
		"00:00:05,500 --> 00:00:08,200\n" +
		"This is a test.\n" +
		"With multiple lines.\n" +
		"\n" +
		"\n" +
		"3\n" +
		"100:00:10,000 --> 100:00:12,500\n" +
		"Final subtitle.\n"

	cues, err := ParseSRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}
	if cues[0].Start != 1000 || cues[0].End != 4000 || cues[0].Text != "Hello, world!" {
		t.Errorf("unexpected cue 0: %+v", cues[0])
	}
	if cues[1].Text != "This is a test.\nWith multiple lines." {
		t.Errorf("unexpected cue 1 text: %q", cues[1].Text)
	}
	if cues[2].Start != 360010000 {
		t.Errorf("unexpected cue 2 start: %d", cues[2].Start)
	}
}

func TestParseSRTReadsRenderedOutput(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 500, Text: "Hi"},
		{Index: 2, Start: 500, End: 900, Text: ""},
		{Index: 3, Start: 900, End: 1200, Text: "42"},
	}

	got, err := ParseSRT(strings.NewReader(RenderSRT(cues)))
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if !reflect.DeepEqual(got, cues) {
		t.Errorf("got %+v, want %+v", got, cues)
	}
}

func TestParseSRTMissingTiming(t *testing.T) {
	_, err := ParseSRT(strings.NewReader("1\nnot a timing line\ntext\n"))
	if err == nil {
		t.Fatal("expected error for missing timing line")
	}
}

func TestParseVTT(t *testing.T) {
	content := `WEBVTT
Kind: captions

NOTE this is a comment
spanning two lines

1
00:00:01.000 --> 00:00:04.000
Hello, world!

intro
00:05.500 --> 00:08.200 align:start
This is a test.
With multiple lines.

00:00:10.000 --> 00:00:12.500
No cue identifier.
`

	cues, err := ParseVTT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseVTT returned error: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(cues), cues)
	}
	if cues[1].Index != 2 || cues[1].Start != 5500 || cues[1].End != 8200 {
		t.Errorf("unexpected cue 1: %+v", cues[1])
	}
	if cues[2].Text != "No cue identifier." {
		t.Errorf("unexpected cue 2 text: %q", cues[2].Text)
	}
}

func TestParseVTTRequiresHeader(t *testing.T) {
	if _, err := ParseVTT(strings.NewReader("1\n00:00:01.000 --> 00:00:02.000\nx\n")); err == nil {
		t.Error("expected error for missing header")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	srtPath := filepath.Join(dir, "a.srt")
	if err := os.WriteFile(srtPath, []byte(RenderSRT(sampleCues)), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	cues, format, err := Open(srtPath)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if format != FormatSRT || len(cues) != 2 {
		t.Errorf("Open = %d cues, format %s", len(cues), format)
	}

	vttPath := filepath.Join(dir, "a.vtt")
	if err := os.WriteFile(vttPath, []byte((&VTTWriter{}).Render(sampleCues)), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	cues, format, err = Open(vttPath)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if format != FormatVTT || !reflect.DeepEqual(cues, sampleCues) {
		t.Errorf("Open(vtt) = %+v, format %s", cues, format)
	}

	assPath := filepath.Join(dir, "a.ass")
	if err := os.WriteFile(assPath, []byte((&ASSWriter{Title: "t"}).Render(sampleCues)), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	cues, format, err = Open(assPath)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	// ASS keeps centiseconds only
	want := []Cue{
		{Index: 1, Start: 0, End: 500, Text: "Hi"},
		{Index: 2, Start: 500, End: 3661000, Text: "two\nlines"},
	}
	if format != FormatASS || !reflect.DeepEqual(cues, want) {
		t.Errorf("Open(ass) = %+v, format %s", cues, format)
	}

	if _, _, err := Open(filepath.Join(dir, "missing.srt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseASS(t *testing.T) {
	content := "\ufeff[Script Info]\n" +
		"Title: x\n\n" +
		"[V4+ Styles]\n" +
		"Format: Name, Fontname\n" +
		"Style: Default,Arial\n\n" +
		"[Events]\n" +
		"Format: Layer, Start, End, Style, Text\n" +
		"Comment: 0,0:00:00.00,0:00:01.00,Default,skip me\n" +
		"Dialogue: 0,0:00:01.5,0:00:02.25,Default,{\\an8}{\\i1}Hello, world\\Nagain\n" +
		"Dialogue: 0,10:00:00.00,10:00:01.00,Default,\n"

	cues, err := ParseASS(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseASS returned error: %v", err)
	}
	want := []Cue{
		{Index: 1, Start: 1500, End: 2250, Text: "Hello, world\nagain"},
		{Index: 2, Start: 36000000, End: 36001000, Text: ""},
	}
	if !reflect.DeepEqual(cues, want) {
		t.Errorf("ParseASS = %+v, want %+v", cues, want)
	}
}

func TestParseASSErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no events", "[Script Info]\nTitle: x\n"},
		{"missing text column", "[Events]\nFormat: Layer, Start, End\n"},
		{"dialogue before format", "[Events]\nDialogue: 0,0:00:00.00,0:00:01.00,x\n"},
		{"bad time", "[Events]\nFormat: Start, End, Text\nDialogue: 1.00,0:00:01.00,x\n"},
		{"too few fields", "[Events]\nFormat: Layer, Start, End, Text\nDialogue: 0,0:00:00.00\n"},
		{"text not last", "[Events]\nFormat: Start, Text, End\nDialogue: 0:00:00.00,a, b,0:00:01.00\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseASS(strings.NewReader(tt.content)); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}
