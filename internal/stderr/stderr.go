//go:build !windows

// Package stderr captures stderr output from C libraries (ALSA) that write
// directly to file descriptor 2, bypassing Go's os.Stderr. Captured lines are
// re-logged so they cannot interleave with structured log output or corrupt
// a terminal UI.
package stderr

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
)

var (
	mu         sync.Mutex
	origStderr int
	original   *os.File
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
)

// Start begins capturing stderr output.
// Must be called early in main(), before any C library initialization.
// Returns an error if capture cannot be set up, but the program can continue
// without stderr capture (output will just go to the original stderr).
func Start() error {
	mu.Lock()
	defer mu.Unlock()

	if started {
		return nil
	}

	// Create a pipe
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	// Save original stderr file descriptor
	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	err = syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd()))
	if err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return err
	}

	original = os.NewFile(uintptr(origStderr), "stderr")
	pipeRead = r
	pipeWrite = w
	started = true
	return nil
}

// Original returns a writer to the real stderr, bypassing capture. Loggers
// must write here once capture has started.
func Original() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if original != nil {
		return original
	}
	return os.Stderr
}

// Forward logs every captured line at debug level until Stop is called.
func Forward(log *slog.Logger) {
	mu.Lock()
	r := pipeRead
	mu.Unlock()
	if r == nil {
		return
	}
	go forward(r, log)
}

func forward(r io.Reader, log *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			log.Debug("native library output", "line", line)
		}
	}
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if !started {
		return
	}

	// Restore original stderr
	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = original.Close()
	original = nil

	// Close pipe
	pipeWrite.Close()
	pipeRead.Close()
	pipeRead = nil

	started = false
}
