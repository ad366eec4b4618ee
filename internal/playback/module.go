// Package playback implements the audio playback module exposed to the
// scripting layer: one native player, transport commands, and progress,
// completion and error events delivered to subscribers.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/starlight/internal/errmsg"
	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

const (
	// DefaultProgressInterval is the period of progress events while playing.
	DefaultProgressInterval = 250 * time.Millisecond

	MinRate = 0.5
	MaxRate = 2.0
)

// Resolver turns locators into local files.
type Resolver interface {
	Resolve(ctx context.Context, locator string) (*source.Resolved, error)
}

// Options configures a Module.
type Options struct {
	ProgressInterval time.Duration
	Volume           float64
	Rate             float64
	Logger           *slog.Logger
}

// DefaultOptions returns full volume, normal rate and the default interval.
func DefaultOptions() Options {
	return Options{
		ProgressInterval: DefaultProgressInterval,
		Volume:           1,
		Rate:             1,
	}
}

// Module owns one native player and at most one session.
//
// Every piece of work that can outlive the command that started it (progress
// ticks, end-of-stream notifications, remote loads) carries the epoch it was
// started in. Tearing a stream down bumps the epoch first, so late work from
// a released stream is recognised and dropped.
type Module struct {
	mu sync.Mutex

	player   player.Interface
	resolver Resolver
	log      *slog.Logger
	interval time.Duration

	state   State
	session *session
	epoch   uint64

	pending        context.CancelFunc
	pendingLocator string

	tickStop chan struct{}

	volume float64
	rate   float64

	subs   []*Subscription
	closed bool
}

// New creates a module in the unloaded state.
func New(p player.Interface, r Resolver, opts Options) *Module {
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	rate := opts.Rate
	if rate <= 0 || math.IsNaN(rate) {
		rate = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := &Module{
		player:   p,
		resolver: r,
		log:      log,
		interval: interval,
		state:    StateUnloaded,
		volume:   clampVolume(opts.Volume, 1),
		rate:     clampRate(rate, 1),
	}
	p.SetVolume(m.volume)
	p.SetRate(m.rate)
	return m
}

// Load replaces the current session with one for locator.
//
// Local and inline sources are opened before Load returns. Remote sources are
// fetched in the background: Load returns nil at once, the module stays
// unloaded, and a Loaded or ErrorEvent reports the outcome.
func (m *Module) Load(ctx context.Context, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return m.failLocked(errmsg.OpLoad, locator, KindInvalidState, errClosed)
	}

	m.teardownLocked()
	m.epoch++
	epoch := m.epoch

	if source.IsRemote(locator) {
		loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		m.pending = cancel
		m.pendingLocator = locator
		m.setStateLocked(StateUnloaded)
		m.log.Debug("fetching remote source", "source", locator)
		go m.loadAsync(loadCtx, epoch, locator)
		return nil
	}

	res, err := m.resolver.Resolve(ctx, locator)
	if err != nil {
		m.setStateLocked(StateUnloaded)
		return m.failLocked(errmsg.OpLoad, locator, KindResource, err)
	}
	return m.openLocked(locator, res)
}

func (m *Module) loadAsync(ctx context.Context, epoch uint64, locator string) {
	res, err := m.resolver.Resolve(ctx, locator)

	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch || m.closed {
		if res != nil {
			_ = res.Release()
		}
		return
	}

	m.pending()
	m.pending = nil
	m.pendingLocator = ""

	if err != nil {
		_ = m.failLocked(errmsg.OpLoad, locator, KindResource, err)
		return
	}
	_ = m.openLocked(locator, res)
}

// openLocked opens res in the engine and installs it as the session.
func (m *Module) openLocked(locator string, res *source.Resolved) error {
	if !player.IsSupported(res.Path) {
		_ = res.Release()
		m.setStateLocked(StateUnloaded)
		err := fmt.Errorf("%w: %s", player.ErrUnsupportedFormat, filepath.Ext(res.Path))
		return m.failLocked(errmsg.OpLoad, locator, KindResource, err)
	}

	info, err := m.player.Open(res.Path, m.endHook(m.epoch))
	if err != nil {
		_ = res.Release()
		m.setStateLocked(StateUnloaded)
		return m.failLocked(errmsg.OpLoad, locator, classify(err), err)
	}
	m.player.SetVolume(m.volume)
	m.player.SetRate(m.rate)

	m.session = &session{
		id:       uuid.NewString(),
		locator:  locator,
		res:      res,
		info:     info,
		duration: m.player.Duration(),
		open:     true,
	}
	m.emitLocked(Loaded{
		Session:  m.session.id,
		Source:   locator,
		Duration: m.session.duration,
		Info:     info,
	})
	m.setStateLocked(StateStopped)
	m.log.Info("loaded source",
		"source", locator,
		"session", m.session.id,
		"kind", res.Kind.String(),
		"duration", m.session.duration)
	return nil
}

// Play starts or resumes playback.
func (m *Module) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return m.failLocked(errmsg.OpPlay, "", KindInvalidState, errClosed)
	}
	if m.session == nil {
		if m.pending != nil {
			return m.failLocked(errmsg.OpPlay, m.pendingLocator, KindInvalidState, errLoading)
		}
		return m.failLocked(errmsg.OpPlay, "", KindInvalidState, errNotLoaded)
	}
	if m.state == StatePlaying {
		return nil
	}

	if !m.session.open {
		if err := m.reopenLocked(); err != nil {
			return err
		}
	}

	m.player.Start()
	m.setStateLocked(StatePlaying)
	m.startTickerLocked()
	return nil
}

// reopenLocked reopens the session's stream after a stop or a natural end.
func (m *Module) reopenLocked() error {
	s := m.session
	m.epoch++
	info, err := m.player.Open(s.res.Path, m.endHook(m.epoch))
	if err != nil {
		return m.failLocked(errmsg.OpPlay, s.locator, classify(err), err)
	}
	m.player.SetVolume(m.volume)
	m.player.SetRate(m.rate)

	s.info = info
	s.duration = m.player.Duration()
	s.open = true
	if s.resumeAt > 0 {
		m.player.SeekTo(s.resumeAt)
		s.resumeAt = 0
	}
	return nil
}

// Pause holds playback at the current position.
func (m *Module) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePlaying {
		err := fmt.Errorf("cannot pause while %s", m.state)
		return m.failLocked(errmsg.OpPause, m.locatorLocked(), KindInvalidState, err)
	}

	m.cancelTickerLocked()
	m.player.Pause()
	m.setStateLocked(StatePaused)
	return nil
}

// Stop ends playback, releases the engine stream and cancels a pending load.
// The session is kept so Play can start it again from the beginning.
func (m *Module) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil {
		m.cancelPendingLocked()
		m.epoch++
	}
	if m.session == nil {
		return nil
	}
	m.stopLocked()
	return nil
}

// stopLocked cancels the ticker before releasing the stream.
func (m *Module) stopLocked() {
	m.cancelTickerLocked()
	m.epoch++
	if m.session.open {
		m.player.Close()
		m.session.open = false
	}
	m.session.resumeAt = 0
	m.setStateLocked(StateStopped)
}

// Seek moves to pos clamped to [0, duration] and returns the applied
// position. The upper bound is skipped while the duration is unknown.
// Seeking with nothing loaded is ignored.
func (m *Module) Seek(pos time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return 0
	}

	pos = clampPosition(pos, m.session.duration)
	if m.session.open {
		pos = m.player.SeekTo(pos)
	} else {
		m.session.resumeAt = pos
	}
	m.emitLocked(Seeked{Session: m.session.id, Position: pos})
	return pos
}

// SetVolume sets the linear volume, clamped to [0, 1], and returns it.
// A level of 0 is reported as muted.
func (m *Module) SetVolume(level float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume = clampVolume(level, m.volume)
	m.player.SetVolume(m.volume)
	m.emitLocked(VolumeChange{Level: m.volume, Muted: m.volume == 0})
	return m.volume
}

// SetRate sets the playback rate, clamped to [MinRate, MaxRate], and
// returns it.
func (m *Module) SetRate(rate float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rate = clampRate(rate, m.rate)
	m.player.SetRate(m.rate)
	m.emitLocked(RateChange{Rate: m.rate})
	return m.rate
}

// Subscribe registers a new event subscriber.
func (m *Module) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := newSubscription(eventBufferSize)
	if m.closed {
		sub.close()
		return sub
	}
	m.subs = append(m.subs, sub)
	return sub
}

// Unsubscribe stops delivering events to sub and signals its Done channel.
func (m *Module) Unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.subs {
		if s == sub {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			break
		}
	}
	sub.close()
}

// Close tears down the session, closes all subscriptions and rejects
// further commands.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.teardownLocked()
	m.setStateLocked(StateUnloaded)
	m.closed = true

	for _, sub := range m.subs {
		sub.close()
	}
	m.subs = nil
	return nil
}

// teardownLocked ends the session and any pending load. An active session
// goes through the same stop as Stop, so subscribers see it stop once.
func (m *Module) teardownLocked() {
	if m.pending != nil {
		m.cancelPendingLocked()
	}
	if m.session == nil {
		return
	}
	m.stopLocked()
	if err := m.session.res.Release(); err != nil {
		m.log.Warn("release source", "source", m.session.locator, "error", err)
	}
	m.session = nil
}

func (m *Module) cancelPendingLocked() {
	m.pending()
	m.pending = nil
	m.pendingLocator = ""
}

// endHook returns the engine callback for a stream opened in epoch.
func (m *Module) endHook(epoch uint64) func(error) {
	return func(err error) { m.handleEnd(epoch, err) }
}

// handleEnd finishes the session when its stream plays out, or reports the
// decode error that cut it short.
func (m *Module) handleEnd(epoch uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch || m.session == nil || !m.state.IsActive() {
		return
	}

	m.cancelTickerLocked()
	m.epoch++
	m.player.Close()
	m.session.open = false
	m.session.resumeAt = 0

	if err != nil {
		_ = m.failLocked(errmsg.OpDecode, m.session.locator, KindResource, err)
		m.setStateLocked(StateStopped)
		return
	}
	m.emitLocked(Finished{Session: m.session.id})
	m.setStateLocked(StateStopped)
	m.log.Debug("finished", "session", m.session.id)
}

func (m *Module) setStateLocked(s State) {
	if m.state == s {
		return
	}
	prev := m.state
	m.state = s
	m.emitLocked(StateChange{Session: m.sessionIDLocked(), Previous: prev, Current: s})
}

// failLocked builds the command error and mirrors it as an ErrorEvent.
func (m *Module) failLocked(op errmsg.Op, subject string, kind ErrorKind, err error) error {
	e := &Error{Kind: kind, Op: op, Subject: subject, Err: err}
	m.log.Warn("playback command failed",
		"op", string(op),
		"kind", kind.String(),
		"source", subject,
		"error", err)
	m.emitLocked(ErrorEvent{Session: m.sessionIDLocked(), Kind: kind, Message: e.Error()})
	return e
}

func (m *Module) emitLocked(e Event) {
	for _, sub := range m.subs {
		sub.send(e)
	}
}

func (m *Module) sessionIDLocked() string {
	if m.session == nil {
		return ""
	}
	return m.session.id
}

func (m *Module) locatorLocked() string {
	if m.session == nil {
		return ""
	}
	return m.session.locator
}

func clampPosition(pos, duration time.Duration) time.Duration {
	pos = max(pos, 0)
	if duration > 0 {
		pos = min(pos, duration)
	}
	return pos
}

// clampVolume bounds level to [0, 1]; NaN keeps fallback.
func clampVolume(level, fallback float64) float64 {
	if math.IsNaN(level) {
		return fallback
	}
	return min(max(level, 0), 1)
}

// clampRate bounds rate to [MinRate, MaxRate]; NaN keeps fallback.
func clampRate(rate, fallback float64) float64 {
	if math.IsNaN(rate) {
		return fallback
	}
	return min(max(rate, MinRate), MaxRate)
}
