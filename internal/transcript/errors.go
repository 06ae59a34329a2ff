package transcript

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInputKind matches every *KindError.
	ErrInvalidInputKind = errors.New("invalid input kind")
	// ErrDecodingFailure matches every *DecodeError.
	ErrDecodingFailure = errors.New("decoding failure")
)

// KindError reports input that does not have the transcript shape.
type KindError struct {
	Path string // "$" for the document root, "$[0].words[2].text" below it
	Want string
	Got  string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("invalid input kind at %s: expected %s, got %s", e.Path, e.Want, e.Got)
}

func (e *KindError) Is(target error) bool {
	return target == ErrInvalidInputKind
}

// DecodeError reports bytes that could not be decoded in the configured
// charset. Callers fall back to the raw value.
type DecodeError struct {
	Charset string
	Raw     []byte
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %d bytes as %s: %v", len(e.Raw), e.Charset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodingFailure
}

func sentencePath(i int) string {
	return fmt.Sprintf("$[%d]", i)
}

func wordPath(i, j int) string {
	return fmt.Sprintf("$[%d].words[%d]", i, j)
}
