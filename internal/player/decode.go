package player

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extOGA  = ".oga"
	extM4A  = ".m4a"
	extMP4  = ".mp4"
)

var (
	// ErrUnsupportedFormat is returned for files no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrDevice is returned when the audio output cannot be opened.
	ErrDevice = errors.New("audio device unavailable")
)

var formatNames = map[string]string{
	extMP3:  "MP3",
	extFLAC: "FLAC",
	extWAV:  "WAV",
	extOGG:  "VORBIS",
	extOGA:  "VORBIS",
	extM4A:  "M4A",
	extMP4:  "M4A",
}

// IsSupported reports whether path has an extension the player can decode.
func IsSupported(path string) bool {
	_, ok := formatNames[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FormatName returns the display name of the codec for path, or the upper-cased
// extension when it is not supported.
func FormatName(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := formatNames[ext]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

// decode picks a decoder by extension. Decoders may panic on corrupted input;
// the panic is turned into an error so a bad file never takes the host down.
func decode(rc io.ReadSeekCloser, ext string) (s beep.StreamSeekCloser, format beep.Format, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, format, err = nil, beep.Format{}, fmt.Errorf("decode %s: %v", ext, r)
		}
	}()

	switch ext {
	case extMP3:
		s, format, err = decodeGoMP3(rc)
	case extFLAC:
		if err = skipID3v2(rc); err != nil {
			return nil, beep.Format{}, err
		}
		s, format, err = flac.Decode(rc)
	case extWAV:
		s, format, err = wav.Decode(rc)
	case extOGG, extOGA:
		s, format, err = vorbis.Decode(rc)
	case extM4A, extMP4:
		s, format, err = decodeM4A(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", ext, err)
	}
	if format.SampleRate <= 0 {
		s.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: invalid sample rate", ext)
	}
	return s, format, nil
}

// skipID3v2 positions r after a leading ID3v2 tag, or back at the start when
// there is none. Some taggers prepend ID3v2 to FLAC files, which the FLAC
// decoder rejects.
func skipID3v2(r io.ReadSeeker) error {
	var header [10]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			_, err = r.Seek(0, io.SeekStart)
		}
		return err
	}

	if string(header[:3]) != "ID3" {
		_, err := r.Seek(0, io.SeekStart)
		return err
	}

	// Tag size is a syncsafe integer: 7 significant bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err := r.Seek(int64(len(header))+size, io.SeekStart)
	return err
}
