package transcript

import (
	"encoding/json"
	"strconv"
)

// WordToken is a single timed token from a recognizer. Times are in
// milliseconds from the start of the audio.
type WordToken struct {
	BeginTime   int64 `json:"begin_time"`
	EndTime     int64 `json:"end_time"`
	Text        Text  `json:"text"`
	Punctuation *Text `json:"punctuation,omitempty"`
}

type Sentence struct {
	Words []WordToken `json:"words"`
}

// Transcript is the recognizer output consumed by the subtitle builder:
// sentences in order, each holding its words in order.
type Transcript []Sentence

// total number of word tokens across all sentences
func (t Transcript) WordCount() int {
	n := 0
	for _, s := range t {
		n += len(s.Words)
	}
	return n
}

// Validate reports the first token whose timestamps cannot be rendered.
// begin_time > end_time is allowed and passed through.
func (t Transcript) Validate() error {
	for i, s := range t {
		for j, w := range s.Words {
			if w.BeginTime < 0 {
				return &KindError{
					Path: wordPath(i, j) + ".begin_time",
					Want: "non-negative integer",
					Got:  strconv.FormatInt(w.BeginTime, 10),
				}
			}
			if w.EndTime < 0 {
				return &KindError{
					Path: wordPath(i, j) + ".end_time",
					Want: "non-negative integer",
					Got:  strconv.FormatInt(w.EndTime, 10),
				}
			}
		}
	}
	return nil
}

// Text is a token field as delivered by a recognizer. Most providers hand
// back decoded strings; some deliver raw bytes in a source charset which
// must go through a Decoder before use.
type Text struct {
	data    []byte
	encoded bool
}

func String(s string) Text {
	return Text{data: []byte(s)}
}

// Bytes wraps undecoded bytes. The slice is copied.
func Bytes(b []byte) Text {
	return Text{data: append([]byte(nil), b...), encoded: true}
}

func (t Text) IsEncoded() bool {
	return t.encoded
}

// Raw returns the value as received, without decoding.
func (t Text) Raw() string {
	return string(t.data)
}

// MarshalJSON writes decoded text as a JSON string and encoded text as an
// array of byte values, the same shapes Parse accepts.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.encoded {
		return json.Marshal(string(t.data))
	}
	values := make([]int, len(t.data))
	for i, b := range t.data {
		values[i] = int(b)
	}
	return json.Marshal(values)
}
