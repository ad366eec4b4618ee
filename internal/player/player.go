package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// resampleQuality is the beep resampler quality used for rate conversion.
const resampleQuality = 4

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// initSpeaker opens the output device on first use at the first stream's
// sample rate. Later streams are resampled to it.
func initSpeaker(sr beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerInitialized {
		return speakerSampleRate, nil
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDevice, err)
	}
	speakerInitialized = true
	speakerSampleRate = sr
	return sr, nil
}

// Player plays one local audio file at a time through the beep speaker.
// It is not safe for concurrent use; the playback module serializes calls.
type Player struct {
	state     State
	file      *os.File
	streamer  beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	trackInfo *TrackInfo

	// baseRatio converts the file's sample rate to the speaker's.
	baseRatio   float64
	volumeLevel float64
	rate        float64
}

// New creates a player with full volume and normal rate.
func New() *Player {
	return &Player{
		state:       Closed,
		volumeLevel: 1,
		rate:        1,
	}
}

// Open decodes path and queues it on the speaker, paused at zero.
// Any previously open stream is closed first.
func (p *Player) Open(path string, onEnd func(error)) (*TrackInfo, error) {
	p.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	streamer, format, err := decode(f, ext)
	if err != nil {
		f.Close()
		return nil, err
	}

	outRate, err := initSpeaker(format.SampleRate)
	if err != nil {
		streamer.Close()
		f.Close()
		return nil, err
	}

	p.file = f
	p.streamer = streamer
	p.format = format
	p.baseRatio = float64(format.SampleRate) / float64(outRate)
	p.resampler = beep.ResampleRatio(resampleQuality, p.baseRatio*p.rate, streamer)
	p.ctrl = &beep.Ctrl{Streamer: p.resampler, Paused: true}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.volumeLevel <= 0,
	}
	p.trackInfo = describe(path, streamer.Len(), format)
	p.state = Paused

	// The callback runs inside the speaker's mixing loop, which holds the
	// speaker lock; onEnd gets its own goroutine so it may call back in.
	// Decoders stop early on a corrupt frame and keep the cause in Err.
	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		err := streamer.Err()
		if onEnd != nil {
			go onEnd(err)
		}
	})))

	info := *p.trackInfo
	return &info, nil
}

// Start resumes output of the open stream.
func (p *Player) Start() {
	if !p.state.CanStart() || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// Pause holds output without losing position.
func (p *Player) Pause() {
	if !p.state.CanPause() || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Close removes the stream from the speaker and releases the file.
func (p *Player) Close() {
	if !p.state.IsOpen() {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		_ = p.streamer.Close()
	}
	if p.file != nil {
		_ = p.file.Close()
	}

	p.streamer = nil
	p.file = nil
	p.resampler = nil
	p.ctrl = nil
	p.volume = nil
	p.trackInfo = nil
	p.state = Closed
}

// State returns the stream state.
func (p *Player) State() State { return p.state }

// Position returns the current position in the file.
func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(n)
}

// Duration returns the length of the open file, or 0 when closed.
func (p *Player) Duration() time.Duration {
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// SeekTo moves to pos clamped to the stream bounds and returns the position
// actually applied.
func (p *Player) SeekTo(pos time.Duration) time.Duration {
	if p.streamer == nil {
		return 0
	}

	n := min(max(p.format.SampleRate.N(pos), 0), p.streamer.Len())

	speaker.Lock()
	err := p.streamer.Seek(n)
	if err != nil {
		n = p.streamer.Position()
	}
	speaker.Unlock()

	return p.format.SampleRate.D(n)
}

// SetVolume sets the linear volume level, clamped to [0, 1]. The level
// survives Close and applies to the next stream.
func (p *Player) SetVolume(level float64) {
	p.volumeLevel = clampLevel(level)
	if p.volume == nil {
		return
	}
	speaker.Lock()
	p.volume.Volume = levelToVolume(p.volumeLevel)
	p.volume.Silent = p.volumeLevel <= 0
	speaker.Unlock()
}

// SetRate changes the playback speed. Pitch follows the speed.
func (p *Player) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	p.rate = rate
	if p.resampler == nil {
		return
	}
	speaker.Lock()
	p.resampler.SetRatio(p.baseRatio * rate)
	speaker.Unlock()
}
