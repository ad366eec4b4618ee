package player

import (
	"os"
	"path/filepath"
	"strings"
)

// coverNames lists album art file names in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt returns the highest-priority cover image next to trackPath,
// matching names case-insensitively, or "" when there is none.
func FindAlbumArt(trackPath string) string {
	if trackPath == "" {
		return ""
	}
	dir := filepath.Dir(trackPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	found := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if _, ok := found[lower]; !ok {
			found[lower] = e.Name()
		}
	}
	for _, name := range coverNames {
		if actual, ok := found[name]; ok {
			return filepath.Join(dir, actual)
		}
	}
	return ""
}
