package player

import (
	"path/filepath"
	"sync"
	"time"
)

// Mock is a test double for Player. Its clock is the real time package, so
// under testing/synctest it advances with the bubble's fake time and ends
// streams on schedule.
type Mock struct {
	mu sync.Mutex

	state     State
	duration  time.Duration
	base      time.Duration // position at the last start, seek or pause
	startedAt time.Time
	rate      float64
	volume    float64
	onEnd     func(error)
	endTimer  *time.Timer
	armGen    int

	failAt  time.Duration
	failErr error
	limit   time.Duration // where the armed stream stops

	openErr    error
	openCalls  []string
	closeCalls int
}

// NewMock creates a mock whose streams last duration.
func NewMock(duration time.Duration) *Mock {
	return &Mock{
		state:    Closed,
		duration: duration,
		rate:     1,
		volume:   1,
	}
}

func (m *Mock) Open(path string, onEnd func(error)) (*TrackInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()
	m.openCalls = append(m.openCalls, path)
	if m.openErr != nil {
		return nil, m.openErr
	}

	m.state = Paused
	m.base = 0
	m.limit = m.duration
	m.onEnd = onEnd
	return &TrackInfo{
		Path:     path,
		Title:    filepath.Base(path),
		Duration: m.duration,
		Format:   FormatName(path),
	}, nil
}

func (m *Mock) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Paused {
		return
	}
	m.state = Playing
	m.startedAt = time.Now()
	m.armLocked()
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Playing {
		return
	}
	m.base = m.positionLocked()
	m.disarmLocked()
	m.state = Paused
}

func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Mock) closeLocked() {
	if m.state == Closed {
		return
	}
	m.disarmLocked()
	m.state = Closed
	m.base = 0
	m.onEnd = nil
	m.closeCalls++
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionLocked()
}

func (m *Mock) positionLocked() time.Duration {
	if m.state != Playing {
		return m.base
	}
	elapsed := time.Duration(float64(time.Since(m.startedAt)) * m.rate)
	return min(m.base+elapsed, m.limit)
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Closed {
		return 0
	}
	return m.duration
}

func (m *Mock) SeekTo(pos time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Closed {
		return 0
	}
	m.base = min(max(pos, 0), m.duration)
	if m.state == Playing {
		m.startedAt = time.Now()
		m.armLocked()
	}
	return m.base
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clampLevel(level)
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rate <= 0 {
		return
	}
	if m.state == Playing {
		m.base = m.positionLocked()
		m.startedAt = time.Now()
	}
	m.rate = rate
	if m.state == Playing {
		m.armLocked()
	}
}

// armLocked schedules the end-of-stream callback for the remaining duration,
// or the injected failure when playback has not passed it yet.
func (m *Mock) armLocked() {
	m.disarmLocked()
	gen := m.armGen
	onEnd := m.onEnd
	stopAt, err := m.duration, error(nil)
	if m.failErr != nil && m.base < m.failAt && m.failAt < m.duration {
		stopAt, err = m.failAt, m.failErr
	}
	m.limit = stopAt
	remaining := time.Duration(float64(stopAt-m.base) / m.rate)
	m.endTimer = time.AfterFunc(remaining, func() {
		m.mu.Lock()
		if m.armGen != gen {
			m.mu.Unlock()
			return
		}
		m.base = stopAt
		m.startedAt = time.Now()
		m.endTimer = nil
		m.mu.Unlock()
		if onEnd != nil {
			onEnd(err)
		}
	})
}

func (m *Mock) disarmLocked() {
	m.armGen++
	if m.endTimer != nil {
		m.endTimer.Stop()
		m.endTimer = nil
	}
}

// Test helpers

func (m *Mock) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// FailAt makes streams stop with err once playback reaches pos, the way a
// decoder reports a corrupted frame.
func (m *Mock) FailAt(pos time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt = pos
	m.failErr = err
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) OpenCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.openCalls...)
}

func (m *Mock) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
