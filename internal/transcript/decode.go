package transcript

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const DefaultCharset = "utf-8"

var errInvalidUTF8 = errors.New("invalid UTF-8 sequence")

// Decoder turns encoded Text into a Go string. The zero value decodes
// strict UTF-8.
type Decoder struct {
	charset string
	enc     encoding.Encoding
}

// NewDecoder resolves charset by its WHATWG label (utf-8, gb18030, gbk,
// big5, shift_jis, ...). An empty label means UTF-8.
func NewDecoder(charset string) (*Decoder, error) {
	label := strings.ToLower(strings.TrimSpace(charset))
	if label == "" {
		return &Decoder{charset: DefaultCharset}, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	if name == DefaultCharset {
		// x/text's UTF-8 decoder substitutes U+FFFD instead of failing
		return &Decoder{charset: DefaultCharset}, nil
	}
	return &Decoder{charset: name, enc: enc}, nil
}

func (d *Decoder) Charset() string {
	if d == nil || d.charset == "" {
		return DefaultCharset
	}
	return d.charset
}

// Decode returns already-decoded text unchanged. Encoded text is decoded
// in the configured charset; on failure the error is a *DecodeError.
func (d *Decoder) Decode(t Text) (string, error) {
	if !t.encoded {
		return string(t.data), nil
	}

	if d == nil || d.enc == nil {
		if !utf8.Valid(t.data) {
			return "", &DecodeError{Charset: DefaultCharset, Raw: t.data, Err: errInvalidUTF8}
		}
		return string(t.data), nil
	}

	out, err := d.enc.NewDecoder().Bytes(t.data)
	if err != nil {
		return "", &DecodeError{Charset: d.charset, Raw: t.data, Err: err}
	}
	return string(out), nil
}
