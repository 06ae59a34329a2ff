package subtitle

// represents single subtitle cue; times are milliseconds
type Cue struct {
	Index int
	Start int64
	End   int64
	Text  string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for rendering cues and writing them to files
type Writer interface {
	Render(cues []Cue) string
	Write(cues []Cue, path string) error
}

// ParseFormat maps a user supplied name onto a Format.
func ParseFormat(name string) (Format, bool) {
	switch Format(name) {
	case FormatSRT, FormatVTT, FormatASS:
		return Format(name), true
	case "ssa":
		return FormatASS, true
	default:
		return "", false
	}
}
