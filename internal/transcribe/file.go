package transcribe

import (
	"context"
	"fmt"
	"os"

	"github.com/mgpai22/wordcue/internal/transcript"
)

// FileTranscriber reads a recognizer result that was saved as JSON. It
// is the offline provider used for fixtures and for re-rendering earlier
// runs.
type FileTranscriber struct{}

func NewFileTranscriber() *FileTranscriber {
	return &FileTranscriber{}
}

func (t *FileTranscriber) Transcribe(ctx context.Context, path string) (transcript.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	return transcript.Parse(data)
}
