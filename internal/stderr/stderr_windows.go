//go:build windows

// Package stderr provides a no-op implementation for Windows.
// Windows audio libraries don't produce the same stderr noise as ALSA.
package stderr

import (
	"io"
	"log/slog"
	"os"
)

// Start is a no-op on Windows.
func Start() error {
	return nil
}

// Original returns os.Stderr.
func Original() io.Writer {
	return os.Stderr
}

// Forward is a no-op on Windows.
func Forward(_ *slog.Logger) {}

// Stop is a no-op on Windows.
func Stop() {}
