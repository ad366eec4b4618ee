package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_ReportsFailures(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(bad, []byte("not a wave file"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{bad, "notes.txt"}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if got := strings.Count(stderr.String(), "probe: "); got != 2 {
		t.Errorf("stderr has %d failures, want 2:\n%s", got, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "FILE") {
		t.Errorf("stdout missing header:\n%s", stdout.String())
	}
}
