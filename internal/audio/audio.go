package audio

import (
	"mime"
	"path"
	"strings"
)

// extension → MIME type for the formats recognition providers accept
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".mpga": "audio/mpeg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".aiff": "audio/aiff",
	".webm": "audio/webm",
	".mp4":  "video/mp4",
}

var remoteSchemes = []string{"http://", "https://", "gs://"}

// checks if the locator is fetched by the provider rather than uploaded
func IsRemote(locator string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(strings.ToLower(locator), scheme) {
			return true
		}
	}
	return false
}

// checks if the file has a supported audio extension
func IsAudioFile(locator string) bool {
	_, ok := audioTypes[extension(locator)]
	return ok
}

// MIMEType guesses the MIME type from the extension, falling back to
// audio/mpeg.
func MIMEType(locator string) string {
	ext := extension(locator)
	if mt, ok := audioTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "audio/mpeg"
}

// lowercase extension without any query string or fragment
func extension(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i >= 0 && IsRemote(locator) {
		locator = locator[:i]
	}
	return strings.ToLower(path.Ext(locator))
}
