package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	assLeadingTagsRegex = regexp.MustCompile(`^(\{[^}]*\})+`)
	assTimeRegex        = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2})\.(\d{1,3})$`)
)

// column positions taken from the [Events] Format line
type assColumns struct {
	count int
	start int
	end   int
	text  int
}

// ParseASS reads Dialogue events from an ASS/SSA script. Override tags at
// the start of a line are dropped and \N becomes a newline; other sections
// are ignored.
func ParseASS(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)

	var (
		cues     []Cue
		cols     *assColumns
		inEvents bool
		lineNum  int
	)

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(trimmed[1 : len(trimmed)-1])
			inEvents = section == "events"
			continue
		}
		if !inEvents {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "Format:"):
			c, err := parseASSFormat(strings.TrimPrefix(trimmed, "Format:"))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			cols = c
		case strings.HasPrefix(trimmed, "Dialogue:"):
			if cols == nil {
				return nil, fmt.Errorf("line %d: Dialogue before Format line", lineNum)
			}
			cue, err := parseASSDialogue(strings.TrimPrefix(trimmed, "Dialogue:"), cols)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			cue.Index = len(cues) + 1
			cues = append(cues, cue)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS: %w", err)
	}
	if cols == nil {
		return nil, fmt.Errorf("ASS file missing Format line in [Events] section")
	}

	return cues, nil
}

func parseASSFormat(spec string) (*assColumns, error) {
	cols := &assColumns{start: -1, end: -1, text: -1}
	names := strings.Split(spec, ",")
	cols.count = len(names)
	for i, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "start":
			cols.start = i
		case "end":
			cols.end = i
		case "text":
			cols.text = i
		}
	}
	if cols.start < 0 || cols.end < 0 || cols.text < 0 {
		return nil, fmt.Errorf("Format line needs Start, End and Text columns")
	}
	if cols.text != cols.count-1 {
		return nil, fmt.Errorf("Text must be the last column of the Format line")
	}
	return cols, nil
}

func parseASSDialogue(content string, cols *assColumns) (Cue, error) {
	// the last column keeps any commas in the text
	fields := strings.SplitN(strings.TrimSpace(content), ",", cols.count)
	if len(fields) < cols.count {
		return Cue{}, fmt.Errorf("expected %d fields, got %d", cols.count, len(fields))
	}

	start, err := parseASSTime(fields[cols.start])
	if err != nil {
		return Cue{}, fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err := parseASSTime(fields[cols.end])
	if err != nil {
		return Cue{}, fmt.Errorf("invalid end timestamp: %w", err)
	}

	text := assLeadingTagsRegex.ReplaceAllString(fields[cols.text], "")
	text = strings.ReplaceAll(text, `\N`, "\n")
	text = strings.ReplaceAll(text, `\n`, "\n")

	return Cue{Start: start, End: end, Text: text}, nil
}

// H:MM:SS.cc; the fraction is read as a decimal so .5 and .50 agree
func parseASSTime(ts string) (int64, error) {
	m := assTimeRegex.FindStringSubmatch(strings.TrimSpace(ts))
	if m == nil {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	frac := m[4]
	for len(frac) < 3 {
		frac += "0"
	}

	parts := []string{m[1], m[2], m[3], frac}
	return parseTimecodeParts(parts)
}
