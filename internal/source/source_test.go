package source

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/starlight/internal/player"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(Options{TempDir: t.TempDir(), MaxBytes: 1024})
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		locator string
		want    bool
	}{
		{"http://example.com/a.mp3", true},
		{"HTTPS://example.com/a.mp3", true},
		{"  https://example.com/a.mp3", true},
		{"file:///music/a.mp3", false},
		{"/music/a.mp3", false},
		{"data:audio/mpeg;base64,AAAA", false},
	}

	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRemote(tt.locator))
		})
	}
}

func TestIsLocal(t *testing.T) {
	assert.True(t, IsLocal("/music/a.mp3"))
	assert.True(t, IsLocal("file:///music/a.mp3"))
	assert.False(t, IsLocal("https://example.com/a.mp3"))
	assert.False(t, IsLocal("DATA:audio/wav;base64,AAAA"))
}

func TestResolve_LocalPath(t *testing.T) {
	path := writeFile(t, "track.mp3", []byte("frames"))
	r := newTestResolver(t)

	res, err := r.Resolve(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, KindLocal, res.Kind)
	assert.Equal(t, "audio/mpeg", res.MIME)
	assert.Equal(t, int64(6), res.Size)

	require.NoError(t, res.Release())
	_, err = os.Stat(path)
	assert.NoError(t, err, "Release must not delete local files")
}

func TestResolve_FileURI(t *testing.T) {
	path := writeFile(t, "track.flac", []byte("fLaC"))
	r := newTestResolver(t)

	res, err := r.Resolve(context.Background(), "file://"+path)

	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, "file://"+path, res.Locator)
}

func TestResolve_Errors(t *testing.T) {
	r := newTestResolver(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		locator string
		want    error
	}{
		{"empty", "  ", ErrUnresolvable},
		{"missing file", filepath.Join(dir, "missing.mp3"), ErrUnresolvable},
		{"directory", dir, ErrUnresolvable},
		{"blob url", "blob:http://localhost/1234", ErrUnsupported},
		{"unknown scheme", "smb://server/share/a.mp3", ErrUnsupported},
		{"remote file host", "file://nas/music/a.mp3", ErrUnsupported},
		{"data without comma", "data:audio/mpeg;base64", ErrUnresolvable},
		{"data bad base64", "data:audio/mpeg;base64,!!!", ErrUnresolvable},
		{"data unknown type", "data:text/plain,hello", ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.locator)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolve_DataURI(t *testing.T) {
	r := newTestResolver(t)
	payload := []byte("not really mp3 frames")
	uri := "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	res, err := r.Resolve(context.Background(), uri)

	require.NoError(t, err)
	assert.Equal(t, KindInline, res.Kind)
	assert.Equal(t, ".mp3", filepath.Ext(res.Path))
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	require.NoError(t, res.Release())
	_, err = os.Stat(res.Path)
	assert.True(t, os.IsNotExist(err), "Release should remove the temp file")
	assert.NoError(t, res.Release(), "Release is idempotent")
}

func TestResolve_DataURITooLarge(t *testing.T) {
	r := newTestResolver(t)
	uri := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(make([]byte, 2048))

	_, err := r.Resolve(context.Background(), uri)

	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestResolve_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/stream":
			w.Header().Set("Content-Type", "audio/ogg; codecs=vorbis")
			_, _ = w.Write([]byte("OggS"))
		case "/song.flac":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("fLaC"))
		case "/big.mp3":
			_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>"))
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()
	r := newTestResolver(t)

	t.Run("content type decides extension", func(t *testing.T) {
		res, err := r.Resolve(context.Background(), srv.URL+"/stream")
		require.NoError(t, err)
		defer res.Release()
		assert.Equal(t, KindRemote, res.Kind)
		assert.Equal(t, ".ogg", filepath.Ext(res.Path))
		assert.Equal(t, int64(4), res.Size)
	})

	t.Run("url extension wins", func(t *testing.T) {
		res, err := r.Resolve(context.Background(), srv.URL+"/song.flac")
		require.NoError(t, err)
		defer res.Release()
		assert.Equal(t, ".flac", filepath.Ext(res.Path))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), srv.URL+"/missing.mp3")
		assert.ErrorIs(t, err, ErrUnresolvable)
	})

	t.Run("unknown media type", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), srv.URL+"/page")
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), srv.URL+"/big.mp3")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Resolve(ctx, srv.URL+"/stream")
		assert.ErrorIs(t, err, ErrUnresolvable)
	})
}

func TestExtForMIME(t *testing.T) {
	tests := []struct {
		mediaType string
		want      string
	}{
		{"audio/mpeg", ".mp3"},
		{"AUDIO/MPEG", ".mp3"},
		{"audio/x-flac", ".flac"},
		{"audio/ogg; codecs=vorbis", ".ogg"},
		{"text/html", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtForMIME(tt.mediaType), tt.mediaType)
	}
}

func TestMIMETypes_OnlyDecodable(t *testing.T) {
	got := MIMETypes()

	assert.Equal(t, []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg", "audio/mp4"}, got)
	assert.NotContains(t, got, "audio/x-ms-wma")
	assert.NotContains(t, got, "audio/aac")
}

func TestResolve_DataURIMP4IsPlayable(t *testing.T) {
	r := newTestResolver(t)
	uri := "data:audio/mp4;base64," + base64.StdEncoding.EncodeToString([]byte("ftyp"))

	res, err := r.Resolve(context.Background(), uri)
	require.NoError(t, err)
	defer res.Release()

	assert.Equal(t, ".m4a", filepath.Ext(res.Path))
	assert.True(t, player.IsSupported(res.Path))
}

func TestParseDataURI_Plain(t *testing.T) {
	mediaType, payload, err := parseDataURI("data:,abc%20def")

	require.NoError(t, err)
	assert.Equal(t, defaultMIME, mediaType)
	assert.Equal(t, []byte("abc def"), payload)
}
