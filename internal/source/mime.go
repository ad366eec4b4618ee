package source

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/llehouerou/starlight/internal/player"
)

// mimeByExt maps audio file extensions to their MIME type.
var mimeByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".wma":  "audio/x-ms-wma",
}

// extByMIME is the reverse mapping, with the common aliases servers send.
var extByMIME = map[string]string{
	"audio/mpeg":      ".mp3",
	"audio/mp3":       ".mp3",
	"audio/mp4":       ".m4a",
	"audio/x-m4a":     ".m4a",
	"audio/flac":      ".flac",
	"audio/x-flac":    ".flac",
	"audio/wav":       ".wav",
	"audio/wave":      ".wav",
	"audio/x-wav":     ".wav",
	"audio/aac":       ".aac",
	"audio/ogg":       ".ogg",
	"audio/vorbis":    ".ogg",
	"application/ogg": ".ogg",
	"audio/x-ms-wma":  ".wma",
}

// defaultMIME is assumed for inline data without a media type.
const defaultMIME = "audio/mpeg"

// MIMEForPath returns the audio MIME type for a path's extension, or "".
func MIMEForPath(path string) string {
	return mimeByExt[strings.ToLower(filepath.Ext(path))]
}

// ExtForMIME returns the file extension for an audio media type, ignoring
// parameters such as charset. It returns "" for unknown types.
func ExtForMIME(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return extByMIME[mt]
}

// MIMETypes lists the audio MIME types the player can decode. Types that
// resolve to a file but have no decoder, such as wma, are left out.
func MIMETypes() []string {
	seen := make(map[string]bool, len(mimeByExt))
	types := make([]string, 0, len(mimeByExt))
	for _, ext := range []string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".aac", ".wma"} {
		if !player.IsSupported(ext) {
			continue
		}
		if mt := mimeByExt[ext]; !seen[mt] {
			seen[mt] = true
			types = append(types, mt)
		}
	}
	return types
}
