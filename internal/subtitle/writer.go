package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "wordcue subtitles",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderSRT lays each cue out as four lines (index, timing, text, blank)
// and joins every line with "\n". The result is empty when there are no
// cues.
func RenderSRT(cues []Cue) string {
	lines := make([]string, 0, len(cues)*4)
	for _, cue := range cues {
		lines = append(lines,
			strconv.Itoa(cue.Index),
			FormatTimecode(cue.Start)+" --> "+FormatTimecode(cue.End),
			cue.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func (w *SRTWriter) Render(cues []Cue) string {
	return RenderSRT(cues)
}

func (w *SRTWriter) Write(cues []Cue, path string) error {
	return writeFile(path, w.Render(cues))
}

func (w *VTTWriter) Render(cues []Cue) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for _, cue := range cues {
		// cue identifier is optional in VTT; keep the SRT numbering
		fmt.Fprintf(&sb, "%d\n", cue.Index)
		fmt.Fprintf(&sb, "%s --> %s\n",
			formatVTTTimecode(cue.Start),
			formatVTTTimecode(cue.End))
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (w *VTTWriter) Write(cues []Cue, path string) error {
	return writeFile(path, w.Render(cues))
}

func (w *ASSWriter) Render(cues []Cue) string {
	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	fmt.Fprintf(&sb, "Title: %s\n", w.Title)
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&sb, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize)

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range cues {
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTimecode(cue.Start),
			formatASSTimecode(cue.End),
			strings.ReplaceAll(cue.Text, "\n", "\\N"))
	}

	return sb.String()
}

func (w *ASSWriter) Write(cues []Cue, path string) error {
	return writeFile(path, w.Render(cues))
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}

// subtitle format based on file extension
func FormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
