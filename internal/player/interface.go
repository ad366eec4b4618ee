package player

import "time"

// Interface is the native playback primitive driven by the playback module.
//
// Open prepares a stream paused at position zero. onEnd is invoked from its
// own goroutine when that stream stops producing samples, with a non-nil
// error when it stopped on a decode failure rather than its natural end. An
// end that races with Close can still be reported, so callers must tolerate
// stale calls.
type Interface interface {
	Open(path string, onEnd func(error)) (*TrackInfo, error)
	Start()
	Pause()
	Close()
	SeekTo(pos time.Duration) time.Duration
	Position() time.Duration
	Duration() time.Duration
	SetVolume(level float64)
	SetRate(rate float64)
	State() State
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
