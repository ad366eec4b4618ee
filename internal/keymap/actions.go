// Package keymap defines key bindings and action dispatch for the monitor.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionOpen Action = "open"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"
	ActionToggleMute  Action = "toggle_mute"
	ActionRateUp      Action = "rate_up"
	ActionRateDown    Action = "rate_down"

	// Open prompt actions
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)
