package mpris

import (
	"context"
	"time"

	"github.com/llehouerou/starlight/internal/playback"
)

// Controller is the part of the playback module driven by media keys.
type Controller interface {
	Load(ctx context.Context, locator string) error
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) time.Duration
	SetVolume(level float64) float64
	SetRate(rate float64) float64
	Status() playback.Status
}

var _ Controller = (*playback.Module)(nil)
