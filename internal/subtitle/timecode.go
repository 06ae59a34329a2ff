package subtitle

import "fmt"

// FormatTimecode renders milliseconds as an SRT timecode, HH:MM:SS,mmm.
// Hours are not wrapped at 24; past 99 the field simply widens.
// Negative input renders as zero.
func FormatTimecode(ms int64) string {
	h, m, s, milli := splitMillis(ms)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, milli)
}

func formatVTTTimecode(ms int64) string {
	h, m, s, milli := splitMillis(ms)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, milli)
}

// ASS uses centiseconds and an unpadded hour
func formatASSTimecode(ms int64) string {
	h, m, s, milli := splitMillis(ms)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, milli/10)
}

func splitMillis(ms int64) (hours, minutes, seconds, millis int64) {
	if ms < 0 {
		ms = 0
	}
	millis = ms % 1000
	seconds = (ms / 1000) % 60
	minutes = (ms / 60000) % 60
	hours = ms / 3600000
	return hours, minutes, seconds, millis
}
