package transcript

import (
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

// Parse validates a JSON document against the transcript shape and
// converts it into a Transcript. The document must be an array of
// sentence objects; a missing or null "words" field is an empty sentence.
// Every word needs integer begin_time/end_time >= 0 and a text field.
// text and punctuation may be strings or arrays of byte values.
//
// Shape problems are returned as *KindError.
func Parse(data []byte) (Transcript, error) {
	if !gjson.ValidBytes(data) {
		return nil, &KindError{Path: "$", Want: "array of sentences", Got: "malformed JSON"}
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, &KindError{Path: "$", Want: "array of sentences", Got: kindOf(root)}
	}

	sentences := root.Array()
	out := make(Transcript, 0, len(sentences))
	for i, raw := range sentences {
		sentence, err := parseSentence(i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, sentence)
	}
	return out, nil
}

func parseSentence(i int, raw gjson.Result) (Sentence, error) {
	if !raw.IsObject() {
		return Sentence{}, &KindError{Path: sentencePath(i), Want: "object", Got: kindOf(raw)}
	}

	words := raw.Get("words")
	if !words.Exists() || words.Type == gjson.Null {
		return Sentence{}, nil
	}
	if !words.IsArray() {
		return Sentence{}, &KindError{Path: sentencePath(i) + ".words", Want: "array", Got: kindOf(words)}
	}

	items := words.Array()
	sentence := Sentence{Words: make([]WordToken, 0, len(items))}
	for j, w := range items {
		token, err := parseWord(i, j, w)
		if err != nil {
			return Sentence{}, err
		}
		sentence.Words = append(sentence.Words, token)
	}
	return sentence, nil
}

func parseWord(i, j int, raw gjson.Result) (WordToken, error) {
	path := wordPath(i, j)
	if !raw.IsObject() {
		return WordToken{}, &KindError{Path: path, Want: "object", Got: kindOf(raw)}
	}

	begin, err := parseMillis(path+".begin_time", raw.Get("begin_time"))
	if err != nil {
		return WordToken{}, err
	}
	end, err := parseMillis(path+".end_time", raw.Get("end_time"))
	if err != nil {
		return WordToken{}, err
	}

	textField := raw.Get("text")
	if !textField.Exists() || textField.Type == gjson.Null {
		return WordToken{}, &KindError{Path: path + ".text", Want: "string", Got: kindOf(textField)}
	}
	text, err := parseText(path+".text", textField)
	if err != nil {
		return WordToken{}, err
	}

	token := WordToken{BeginTime: begin, EndTime: end, Text: text}

	punctField := raw.Get("punctuation")
	if punctField.Exists() && punctField.Type != gjson.Null {
		punct, err := parseText(path+".punctuation", punctField)
		if err != nil {
			return WordToken{}, err
		}
		token.Punctuation = &punct
	}

	return token, nil
}

func parseMillis(path string, r gjson.Result) (int64, error) {
	if r.Type != gjson.Number {
		return 0, &KindError{Path: path, Want: "non-negative integer", Got: kindOf(r)}
	}

	n, err := strconv.ParseInt(r.Raw, 10, 64)
	if err != nil {
		// accept integral values written as 1500.0 or 1.5e3
		if r.Num != math.Trunc(r.Num) || math.Abs(r.Num) > math.MaxInt64 {
			return 0, &KindError{Path: path, Want: "non-negative integer", Got: r.Raw}
		}
		n = int64(r.Num)
	}
	if n < 0 {
		return 0, &KindError{Path: path, Want: "non-negative integer", Got: r.Raw}
	}
	return n, nil
}

func parseText(path string, r gjson.Result) (Text, error) {
	switch {
	case r.Type == gjson.String:
		return String(r.String()), nil
	case r.IsArray():
		values := r.Array()
		buf := make([]byte, 0, len(values))
		for _, v := range values {
			if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) || v.Num < 0 || v.Num > 255 {
				return Text{}, &KindError{Path: path, Want: "string or byte array", Got: "array containing " + kindOf(v)}
			}
			buf = append(buf, byte(v.Num))
		}
		return Text{data: buf, encoded: true}, nil
	default:
		return Text{}, &KindError{Path: path, Want: "string or byte array", Got: kindOf(r)}
	}
}

func kindOf(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		if !r.Exists() {
			return "nothing"
		}
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number " + r.Raw
	case gjson.String:
		return "string"
	default:
		if r.IsArray() {
			return "array"
		}
		return "object"
	}
}
