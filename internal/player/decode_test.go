package player

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type nopCloser struct{ io.ReadSeeker }

func (nopCloser) Close() error { return nil }

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"song.MP3", true},
		{"song.flac", true},
		{"song.wav", true},
		{"song.ogg", true},
		{"song.oga", true},
		{"song.m4a", true},
		{"song.MP4", true},
		{"song.aac", false},
		{"song.wma", false},
		{"song.opus", false},
		{"song.txt", false},
		{"song", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsSupported(tt.path); got != tt.want {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.mp3", "MP3"},
		{"a.FLAC", "FLAC"},
		{"a.ogg", "VORBIS"},
		{"a.m4a", "M4A"},
	}

	for _, tt := range tests {
		if got := FormatName(tt.path); got != tt.want {
			t.Errorf("FormatName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSkipID3v2_NoTag(t *testing.T) {
	r := bytes.NewReader([]byte("fLaC\x00\x00\x00\x22rest-of-stream"))

	if err := skipID3v2(r); err != nil {
		t.Fatalf("skipID3v2() error = %v", err)
	}
	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos != 0 {
		t.Errorf("position = %d, want 0", pos)
	}
}

func TestSkipID3v2_WithTag(t *testing.T) {
	// 20-byte tag body: syncsafe size 0x00 0x00 0x00 0x14.
	data := append([]byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 0x14}, make([]byte, 20)...)
	data = append(data, []byte("fLaC")...)
	r := bytes.NewReader(data)

	if err := skipID3v2(r); err != nil {
		t.Fatalf("skipID3v2() error = %v", err)
	}
	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos != 30 {
		t.Errorf("position = %d, want 30", pos)
	}
}

func TestSkipID3v2_ShortFile(t *testing.T) {
	r := bytes.NewReader([]byte("ID3"))

	if err := skipID3v2(r); err != nil {
		t.Fatalf("skipID3v2() error = %v", err)
	}
	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos != 0 {
		t.Errorf("position = %d, want 0", pos)
	}
}

func TestDecode_UnsupportedExtension(t *testing.T) {
	_, _, err := decode(nopCloser{bytes.NewReader(nil)}, ".opus")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_GarbageReturnsError(t *testing.T) {
	garbage := bytes.Repeat([]byte{0x13, 0x37}, 512)

	for _, ext := range []string{extWAV, extFLAC, extOGG, extM4A} {
		t.Run(ext, func(t *testing.T) {
			s, _, err := decode(nopCloser{bytes.NewReader(garbage)}, ext)
			if err == nil {
				s.Close()
				t.Fatal("decode() succeeded on garbage input")
			}
		})
	}
}

func TestPlayer_OpenUnsupported(t *testing.T) {
	p := New()

	_, err := p.Open("/music/track.opus", nil)

	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
	if p.State() != Closed {
		t.Errorf("State() = %v, want Closed", p.State())
	}
}

func TestPlayer_OpenMissingFile(t *testing.T) {
	p := New()

	_, err := p.Open(filepath.Join(t.TempDir(), "missing.mp3"), nil)

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want ErrNotExist", err)
	}
}

func TestPlayer_ClosedQueries(t *testing.T) {
	p := New()

	if p.Position() != 0 || p.Duration() != 0 {
		t.Errorf("closed player reports position %v duration %v", p.Position(), p.Duration())
	}
	if got := p.SeekTo(time.Second); got != 0 {
		t.Errorf("SeekTo() on closed player = %v, want 0", got)
	}
	// Volume and rate are remembered for the next stream.
	p.SetVolume(2)
	if p.volumeLevel != 1 {
		t.Errorf("volumeLevel = %v, want clamped 1", p.volumeLevel)
	}
	p.SetRate(1.5)
	if p.rate != 1.5 {
		t.Errorf("rate = %v, want 1.5", p.rate)
	}
	p.SetRate(-1)
	if p.rate != 1.5 {
		t.Errorf("rate = %v after invalid SetRate, want 1.5", p.rate)
	}
}
