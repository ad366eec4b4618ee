package playback

// State is the module's playback state.
//
//	unloaded ──load──▶ stopped ──play──▶ playing ──pause──▶ paused
//	                    ▲  ▲                │ ▲                │
//	                    │  └──stop / end────┘ └──────play──────┘
//	                    └───────────────stop / end─────────────┘
//
// A load from any state tears the current session down first; a failed or
// pending load leaves the module unloaded.
type State int

const (
	StateUnloaded State = iota
	StateStopped
	StatePlaying
	StatePaused
)

// String returns the state name as sent over the bridge.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// IsLoaded returns true if a session exists.
func (s State) IsLoaded() bool {
	return s != StateUnloaded
}
