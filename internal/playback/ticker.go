package playback

import "time"

// startTickerLocked starts the progress ticker, replacing any running one.
func (m *Module) startTickerLocked() {
	m.cancelTickerLocked()

	stop := make(chan struct{})
	m.tickStop = stop
	epoch := m.epoch
	interval := m.interval

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				m.tick(epoch, stop)
			}
		}
	}()
}

// cancelTickerLocked stops the ticker. A tick already waiting for the lock
// sees its stop channel closed and emits nothing.
func (m *Module) cancelTickerLocked() {
	if m.tickStop != nil {
		close(m.tickStop)
		m.tickStop = nil
	}
}

func (m *Module) tick(epoch uint64, stop <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-stop:
		return
	default:
	}
	if epoch != m.epoch || m.state != StatePlaying || m.session == nil {
		return
	}

	pos := m.player.Position()
	if d := m.session.duration; d > 0 {
		pos = min(pos, d)
	}
	m.emitLocked(Progress{
		Session:  m.session.id,
		Position: pos,
		Duration: m.session.duration,
	})
}
