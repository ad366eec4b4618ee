package player

// State is the state of the currently open stream.
//
//	┌──────────┐     Open      ┌──────────┐
//	│  Closed  │ ─────────────▶│  Paused  │
//	└──────────┘               └──────────┘
//	     ▲                       │      ▲
//	     │ Close           Start │      │ Pause
//	     │                       ▼      │
//	     │                     ┌──────────┐
//	     └─────────────────────│  Playing │
//	       Close / end         └──────────┘
//
// Open always starts paused so the caller decides when sound begins.
type State int

const (
	Closed State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsOpen returns true if a stream is held (Playing or Paused).
func (s State) IsOpen() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanStart returns true if the state allows starting output.
func (s State) CanStart() bool {
	return s == Paused
}
