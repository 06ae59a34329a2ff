package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	srtTimingRegex = regexp.MustCompile(
		`^\s*(\d+):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d+):(\d{2}):(\d{2})[,.](\d{3})`,
	)
	vttTimingRegex = regexp.MustCompile(
		`^\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// Open reads an SRT, WebVTT or ASS file, picking the parser by extension.
func Open(path string) ([]Cue, Format, error) {
	format := FormatFromExtension(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var cues []Cue
	switch format {
	case FormatVTT:
		cues, err = ParseVTT(file)
	case FormatASS:
		cues, err = ParseASS(file)
	default:
		cues, err = ParseSRT(file)
	}
	if err != nil {
		return nil, "", err
	}
	return cues, format, nil
}

// ParseSRT reads SubRip cues. A cue whose text line is empty is kept with
// empty text, so RenderSRT output parses back to the same cues.
func ParseSRT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)

	var (
		cues      []Cue
		current   *Cue
		timed     bool
		textLines []string
		lineNum   int
	)

	flush := func() {
		current.Text = strings.Join(textLines, "\n")
		cues = append(cues, *current)
		current = nil
		timed = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case current == nil:
			if trimmed == "" {
				continue
			}
			if index, err := strconv.Atoi(trimmed); err == nil {
				current = &Cue{Index: index}
				continue
			}
			// tolerate a missing index line
			if m := srtTimingRegex.FindStringSubmatch(line); m != nil {
				current = &Cue{Index: len(cues) + 1}
				if err := applyTiming(current, m[1:5], m[5:9]); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				timed = true
			}
		case !timed:
			m := srtTimingRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: expected timing line after cue %d", lineNum, current.Index)
			}
			if err := applyTiming(current, m[1:5], m[5:9]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			timed = true
		case trimmed == "":
			flush()
		default:
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}
	if current != nil && timed {
		flush()
	}

	return cues, nil
}

// ParseVTT reads WebVTT cues. Cue identifiers are optional and cues are
// numbered by position.
func ParseVTT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)

	var (
		cues      []Cue
		current   *Cue
		textLines []string
		lineNum   int
		skipBlock bool
	)

	flush := func() {
		current.Text = strings.Join(textLines, "\n")
		cues = append(cues, *current)
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if !strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				return nil, fmt.Errorf("missing WEBVTT header")
			}
			skipBlock = true
			continue
		}
		trimmed := strings.TrimSpace(line)

		if skipBlock {
			if trimmed == "" {
				skipBlock = false
			}
			continue
		}

		if current != nil {
			if trimmed == "" {
				flush()
			} else {
				textLines = append(textLines, line)
			}
			continue
		}

		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") ||
			strings.HasPrefix(trimmed, "REGION") {
			skipBlock = true
			continue
		}

		m := vttTimingRegex.FindStringSubmatch(line)
		if m == nil {
			// cue identifier; the timing line must follow
			if !scanner.Scan() {
				break
			}
			lineNum++
			line = scanner.Text()
			if m = vttTimingRegex.FindStringSubmatch(line); m == nil {
				return nil, fmt.Errorf("line %d: expected timing line after cue identifier %q", lineNum, trimmed)
			}
		}

		current = &Cue{Index: len(cues) + 1}
		if err := applyTiming(current, m[1:5], m[5:9]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}
	if current != nil {
		flush()
	}

	return cues, nil
}

func applyTiming(cue *Cue, start, end []string) error {
	var err error
	if cue.Start, err = parseTimecodeParts(start); err != nil {
		return fmt.Errorf("invalid start timestamp: %w", err)
	}
	if cue.End, err = parseTimecodeParts(end); err != nil {
		return fmt.Errorf("invalid end timestamp: %w", err)
	}
	return nil
}

// parts are hours (may be empty), minutes, seconds, milliseconds
func parseTimecodeParts(parts []string) (int64, error) {
	var values [4]int64
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}
	return values[0]*3600000 + values[1]*60000 + values[2]*1000 + values[3], nil
}
