package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
)

// TrackInfo describes an opened stream.
type TrackInfo struct {
	Path       string
	Title      string
	Artist     string
	Album      string
	Genre      string
	Year       int
	Track      int
	Duration   time.Duration
	SampleRate int
	BitDepth   int
	Format     string
}

// ReadTrackInfo reads tag metadata from path. The title falls back to the
// file name when the tag has none.
func ReadTrackInfo(path string) (*TrackInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	title := m.Title()
	if title == "" {
		title = filepath.Base(path)
	}
	track, _ := m.Track()

	return &TrackInfo{
		Path:   path,
		Title:  title,
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Year:   m.Year(),
		Track:  track,
	}, nil
}

// describe builds the TrackInfo for a decoded stream, tolerating files
// without tags.
func describe(path string, length int, format beep.Format) *TrackInfo {
	info, err := ReadTrackInfo(path)
	if err != nil {
		info = &TrackInfo{Path: path, Title: filepath.Base(path)}
	}
	info.Duration = format.SampleRate.D(length)
	info.SampleRate = int(format.SampleRate)
	info.BitDepth = format.Precision * 8
	info.Format = FormatName(path)
	return info
}

// Probe decodes path without touching the audio device and describes it.
func Probe(path string) (*TrackInfo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	streamer, format, err := decode(f, ext)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	return describe(path, streamer.Len(), format), nil
}
