package playback

import (
	"time"

	"github.com/llehouerou/starlight/internal/player"
)

// Event names as sent over the bridge.
const (
	EventProgress = "progress"
	EventFinished = "finished"
	EventError    = "error"
	EventState    = "state"
	EventLoaded   = "loaded"
	EventSeeked   = "seeked"
	EventVolume   = "volume"
	EventRate     = "rate"
)

// Event is any message the module emits.
type Event interface {
	Name() string
}

// Progress is emitted periodically while playing.
type Progress struct {
	Session  string
	Position time.Duration
	Duration time.Duration
}

// Finished is emitted once when a session plays to its natural end.
type Finished struct {
	Session string
}

// ErrorEvent mirrors every error returned by a command, plus failures of
// asynchronous loads that have no caller to return to.
type ErrorEvent struct {
	Session string
	Kind    ErrorKind
	Message string
}

// StateChange is emitted when the module state changes.
type StateChange struct {
	Session  string
	Previous State
	Current  State
}

// Loaded is emitted when a session is ready to play.
type Loaded struct {
	Session  string
	Source   string
	Duration time.Duration
	Info     *player.TrackInfo
}

// Seeked is emitted after a seek with the position actually applied.
type Seeked struct {
	Session  string
	Position time.Duration
}

// VolumeChange is emitted when the volume changes.
type VolumeChange struct {
	Level float64
	Muted bool
}

// RateChange is emitted when the playback rate changes.
type RateChange struct {
	Rate float64
}

func (Progress) Name() string     { return EventProgress }
func (Finished) Name() string     { return EventFinished }
func (ErrorEvent) Name() string   { return EventError }
func (StateChange) Name() string  { return EventState }
func (Loaded) Name() string       { return EventLoaded }
func (Seeked) Name() string       { return EventSeeked }
func (VolumeChange) Name() string { return EventVolume }
func (RateChange) Name() string   { return EventRate }
