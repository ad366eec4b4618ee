package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLoad,
			err:      nil,
			expected: "",
		},
		{
			name:     "load operation",
			op:       OpLoad,
			err:      errors.New("file not found"),
			expected: "Failed to load audio: file not found",
		},
		{
			name:     "pause operation",
			op:       OpPause,
			err:      errors.New("not playing"),
			expected: "Failed to pause playback: not playing",
		},
		{
			name:     "decode operation",
			op:       OpDecode,
			err:      errors.New("bad frame header"),
			expected: "Failed to decode audio: bad frame header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		subject  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLoad,
			subject:  "track.mp3",
			expected: "",
		},
		{
			name:     "empty subject falls back to Format",
			op:       OpLoad,
			err:      errors.New("unsupported format"),
			expected: "Failed to load audio: unsupported format",
		},
		{
			name:     "subject is quoted",
			op:       OpLoad,
			subject:  "track.mp3",
			err:      errors.New("unsupported format"),
			expected: "Failed to load audio 'track.mp3': unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.subject, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.subject, tt.err, result, tt.expected)
			}
		})
	}
}
