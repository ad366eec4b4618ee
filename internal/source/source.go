// Package source resolves audio locators into local files the player can open.
//
// Supported locators are plain paths (with ~ expansion), file:// URIs,
// http(s):// URLs, which are downloaded to a temporary file, and data: URIs,
// which are decoded to a temporary file.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	// ErrUnresolvable is returned when a locator points at nothing readable.
	ErrUnresolvable = errors.New("source cannot be resolved")
	// ErrUnsupported is returned for locator schemes or media types that
	// cannot be played.
	ErrUnsupported = errors.New("unsupported source")
	// ErrTooLarge is returned when a download exceeds the size limit.
	ErrTooLarge = errors.New("source exceeds size limit")
)

// Kind tells where a resolved source came from.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
	KindInline
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	case KindInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Resolved is a locator turned into a local file.
type Resolved struct {
	Locator string
	Path    string
	Kind    Kind
	MIME    string
	Size    int64

	temp bool
}

// Release removes temporary files backing the source. Local files are left
// untouched.
func (r *Resolved) Release() error {
	if r == nil || !r.temp {
		return nil
	}
	r.temp = false
	if err := os.Remove(r.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Options configures a Resolver.
type Options struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
	TempDir  string
	Logger   *slog.Logger
}

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 256 << 20
)

// Resolver turns locators into local files.
type Resolver struct {
	client   *http.Client
	maxBytes int64
	tempDir  string
	log      *slog.Logger
}

// NewResolver creates a resolver, filling unset options with defaults.
func NewResolver(opts Options) *Resolver {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		client:   client,
		maxBytes: maxBytes,
		tempDir:  opts.TempDir,
		log:      log,
	}
}

// IsRemote reports whether locator needs a network fetch.
func IsRemote(locator string) bool {
	l := strings.ToLower(strings.TrimSpace(locator))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// IsLocal reports whether locator names a file on disk rather than a
// download or inline data.
func IsLocal(locator string) bool {
	l := strings.ToLower(strings.TrimSpace(locator))
	return !IsRemote(l) && !strings.HasPrefix(l, "data:")
}

// Resolve turns locator into a local file. Remote and inline sources are
// written to temporary files that the caller must Release.
func (r *Resolver) Resolve(ctx context.Context, locator string) (*Resolved, error) {
	loc := strings.TrimSpace(locator)
	lower := strings.ToLower(loc)

	switch {
	case loc == "":
		return nil, fmt.Errorf("%w: empty locator", ErrUnresolvable)
	case strings.HasPrefix(lower, "data:"):
		return r.resolveData(loc)
	case IsRemote(loc):
		return r.fetch(ctx, loc)
	case strings.HasPrefix(lower, "file:"):
		u, err := url.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
		}
		if u.Host != "" && u.Host != "localhost" {
			return nil, fmt.Errorf("%w: remote file host %q", ErrUnsupported, u.Host)
		}
		return r.resolveLocal(loc, u.Path)
	case strings.Contains(loc, "://") || strings.HasPrefix(lower, "blob:"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, schemeOf(loc))
	default:
		return r.resolveLocal(loc, loc)
	}
}

func (r *Resolver) resolveLocal(locator, path string) (*Resolved, error) {
	path = expandPath(path)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrUnresolvable, path)
	}
	return &Resolved{
		Locator: locator,
		Path:    path,
		Kind:    KindLocal,
		MIME:    MIMEForPath(path),
		Size:    fi.Size(),
	}, nil
}

func (r *Resolver) fetch(ctx context.Context, locator string) (*Resolved, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvable, resp.Status)
	}

	ext := ""
	if u, err := url.Parse(locator); err == nil && MIMEForPath(u.Path) != "" {
		ext = strings.ToLower(filepath.Ext(u.Path))
	}
	if ext == "" {
		ext = ExtForMIME(resp.Header.Get("Content-Type"))
	}
	if ext == "" {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrUnsupported, resp.Header.Get("Content-Type"))
	}
	if resp.ContentLength > r.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, humanize.Bytes(uint64(resp.ContentLength)))
	}

	start := time.Now()
	res, err := r.writeTemp(locator, ext, KindRemote, resp.Body)
	if err != nil {
		return nil, err
	}
	r.log.Debug("downloaded source",
		"url", locator,
		"size", humanize.Bytes(uint64(res.Size)), //nolint:gosec // size is non-negative
		"took", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (r *Resolver) resolveData(locator string) (*Resolved, error) {
	mediaType, payload, err := parseDataURI(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	ext := ExtForMIME(mediaType)
	if ext == "" {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrUnsupported, mediaType)
	}
	if int64(len(payload)) > r.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, humanize.Bytes(uint64(len(payload))))
	}
	return r.writeTemp(locator, ext, KindInline, bytes.NewReader(payload))
}

// writeTemp copies body into a temporary file named with ext so the player
// picks the right decoder.
func (r *Resolver) writeTemp(locator, ext string, kind Kind, body io.Reader) (*Resolved, error) {
	f, err := os.CreateTemp(r.tempDir, "starlight-*"+ext)
	if err != nil {
		return nil, err
	}

	n, err := io.Copy(f, io.LimitReader(body, r.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > r.maxBytes {
		err = fmt.Errorf("%w: more than %s", ErrTooLarge, humanize.Bytes(uint64(r.maxBytes))) //nolint:gosec // limit is positive
	}
	if err != nil {
		_ = os.Remove(f.Name())
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}

	return &Resolved{
		Locator: locator,
		Path:    f.Name(),
		Kind:    kind,
		MIME:    mimeByExt[ext],
		Size:    n,
		temp:    true,
	}, nil
}

func schemeOf(locator string) string {
	if i := strings.Index(locator, ":"); i > 0 {
		return locator[:i]
	}
	return locator
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
