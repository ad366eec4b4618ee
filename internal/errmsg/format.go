// Package errmsg provides consistent error formatting for messages that cross
// the bridge to the scripting layer.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

const (
	// Transport commands
	OpLoad  Op = "load audio"
	OpPlay  Op = "start playback"
	OpPause Op = "pause playback"

	// Engine
	OpDecode Op = "decode audio"

	// Bridge
	OpDecodeCommand Op = "decode command"
	OpDispatch      Op = "run command"

	// State
	OpStateLoad Op = "load playback state"
	OpStateSave Op = "save playback state"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message naming the subject of the operation,
// typically a source locator.
func FormatWith(op Op, subject string, err error) string {
	if err == nil {
		return ""
	}
	if subject == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, subject, err)
}
