package subtitle

import (
	"strings"

	"github.com/mgpai22/wordcue/internal/logging"
	"github.com/mgpai22/wordcue/internal/transcript"
)

// Builder turns word-level transcripts into one cue per word.
type Builder struct {
	decoder *transcript.Decoder
	logger  *logging.Logger
}

// nil decoder means strict UTF-8, nil logger discards
func NewBuilder(decoder *transcript.Decoder, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{decoder: decoder, logger: logger}
}

// BuildJSON parses a recognizer JSON document and renders it as SRT.
// Input that is not an array of sentences fails with an error matching
// transcript.ErrInvalidInputKind and an empty result.
func (b *Builder) BuildJSON(data []byte) (string, error) {
	t, err := transcript.Parse(data)
	if err != nil {
		return "", err
	}
	return b.Build(t)
}

// Build renders a transcript as SRT.
func (b *Builder) Build(t transcript.Transcript) (string, error) {
	cues, err := b.Cues(t)
	if err != nil {
		return "", err
	}
	srt := RenderSRT(cues)

	b.logger.Debugw("Generated SRT",
		"entries", len(cues),
		"length", len(srt),
	)
	return srt, nil
}

// Cues numbers every word of every sentence from 1, in order. Empty
// sentences contribute nothing and leave no gap in the numbering.
func (b *Builder) Cues(t transcript.Transcript) ([]Cue, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	b.logger.Debugw("Building cues",
		"sentences", len(t),
		"words", t.WordCount(),
	)

	cues := make([]Cue, 0, t.WordCount())
	for _, sentence := range t {
		for _, word := range sentence.Words {
			if word.BeginTime > word.EndTime {
				b.logger.Debugw("Word ends before it begins",
					"index", len(cues)+1,
					"begin_ms", word.BeginTime,
					"end_ms", word.EndTime,
				)
			}

			text := b.decode(word.Text)
			if word.Punctuation != nil {
				text += b.decode(*word.Punctuation)
			}

			cues = append(cues, Cue{
				Index: len(cues) + 1,
				Start: word.BeginTime,
				End:   word.EndTime,
				Text:  strings.TrimSpace(text),
			})
		}
	}

	return cues, nil
}

// undecodable bytes are kept as received
func (b *Builder) decode(t transcript.Text) string {
	s, err := b.decoder.Decode(t)
	if err != nil {
		b.logger.Warnw("Falling back to raw token text",
			"charset", b.decoder.Charset(),
			"error", err,
		)
		return t.Raw()
	}
	return s
}
