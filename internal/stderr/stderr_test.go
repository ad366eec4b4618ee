//go:build !windows

package stderr

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestForward_LogsNonEmptyLines(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	forward(strings.NewReader("ALSA lib pcm.c: underrun\n\n   \nsecond\n"), log)

	out := buf.String()
	if got := strings.Count(out, "native library output"); got != 2 {
		t.Errorf("logged %d lines, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "underrun") || !strings.Contains(out, "second") {
		t.Errorf("missing captured text:\n%s", out)
	}
}

func TestOriginal_BeforeStart(t *testing.T) {
	if Original() == nil {
		t.Error("Original() = nil")
	}
}
