package playback

import (
	"time"

	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

// session is the currently loaded audio resource.
type session struct {
	id       string
	locator  string
	res      *source.Resolved
	info     *player.TrackInfo
	duration time.Duration

	// open is true while the engine holds the stream. Stop and natural end
	// release it; Play reopens from res.
	open bool
	// resumeAt is a seek made while the stream was released.
	resumeAt time.Duration
}

// Status is a point-in-time view of the module.
type Status struct {
	State    State
	Session  string
	Source   string
	Loading  bool
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Muted    bool
	Rate     float64
	Info     *player.TrackInfo
}

// Status returns the current module state.
func (m *Module) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		State:   m.state,
		Loading: m.pending != nil,
		Source:  m.pendingLocator,
		Volume:  m.volume,
		Muted:   m.volume == 0,
		Rate:    m.rate,
	}
	if s := m.session; s != nil {
		st.Session = s.id
		st.Source = s.locator
		st.Duration = s.duration
		st.Info = s.info
		if s.open {
			st.Position = m.player.Position()
		} else {
			st.Position = s.resumeAt
		}
	}
	return st
}
