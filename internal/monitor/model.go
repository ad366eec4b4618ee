// Package monitor is a terminal front end for the playback module: it shows
// the current session and maps keys to transport commands.
package monitor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/starlight/internal/keymap"
	"github.com/llehouerou/starlight/internal/playback"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
	rateStep   = 0.1
	minWidth   = 30
)

// Controller is the module surface the monitor drives.
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

// EventMsg carries one module event into the update loop.
type EventMsg struct {
	Event playback.Event
}

// ClosedMsg is sent when the subscription ends.
type ClosedMsg struct{}

// Model is the bubbletea model of the monitor.
type Model struct {
	// Autoplay starts playback when a background load completes.
	Autoplay bool
	// ResumeAt is sought to when the next load completes, then cleared.
	ResumeAt time.Duration

	ctl     Controller
	sub     *playback.Subscription
	status  playback.Status
	notice  string
	lastErr string

	bar     progress.Model
	input   textinput.Model
	opening bool

	keys     *keymap.Resolver
	openKeys *keymap.Resolver

	width int
}

// New creates a monitor for ctl fed by sub.
func New(ctl Controller, sub *playback.Subscription) Model {
	ti := textinput.New()
	ti.Placeholder = "path, file:// or http(s):// URL"
	ti.CharLimit = 4096
	ti.Width = 50

	return Model{
		ctl:    ctl,
		sub:    sub,
		status: ctl.Status(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input:  ti,
		width:  80,

		keys:     keymap.NewResolver(append(keymap.ByContext("playback"), keymap.ByContext("global")...)),
		openKeys: keymap.NewResolver(keymap.ByContext("open")),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return WatchEvents(m.sub)
}

// WatchEvents returns a command that waits for the next module event.
func WatchEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.Events:
			return EventMsg{Event: e}
		case <-sub.Done:
			return ClosedMsg{}
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, minWidth)
		m.input.Width = m.width - 6
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, WatchEvents(m.sub)

	case ClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.opening {
			return m.updateOpen(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(e playback.Event) {
	m.status = m.ctl.Status()
	switch ev := e.(type) {
	case playback.ErrorEvent:
		m.lastErr = ev.Message
	case playback.Loaded:
		m.lastErr = ""
		m.notice = "loaded " + displaySource(ev.Source)
		if m.ResumeAt > 0 {
			m.ctl.Seek(m.ResumeAt)
			m.ResumeAt = 0
		}
		if m.Autoplay && m.status.State == playback.StateStopped {
			_ = m.ctl.Play()
			m.status = m.ctl.Status()
		}
	case playback.Finished:
		m.notice = "finished"
	case playback.StateChange:
		if ev.Current == playback.StatePlaying {
			m.notice = ""
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.ctl.Status()
	switch m.keys.Resolve(msg.String()) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionPlayPause:
		if st.State == playback.StatePlaying {
			_ = m.ctl.Pause()
		} else {
			_ = m.ctl.Play()
		}
	case keymap.ActionStop:
		_ = m.ctl.Stop()
	case keymap.ActionSeekBack:
		m.ctl.Seek(st.Position - seekStep)
	case keymap.ActionSeekForward:
		m.ctl.Seek(st.Position + seekStep)
	case keymap.ActionVolumeUp:
		m.ctl.SetVolume(st.Volume + volumeStep)
	case keymap.ActionVolumeDown:
		m.ctl.SetVolume(st.Volume - volumeStep)
	case keymap.ActionToggleMute:
		if st.Volume > 0 {
			m.ctl.SetVolume(0)
		} else {
			m.ctl.SetVolume(1)
		}
	case keymap.ActionRateUp:
		m.ctl.SetRate(st.Rate + rateStep)
	case keymap.ActionRateDown:
		m.ctl.SetRate(st.Rate - rateStep)
	case keymap.ActionOpen:
		m.opening = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	}
	m.status = m.ctl.Status()
	return m, nil
}

func (m Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.openKeys.Resolve(msg.String()) {
	case keymap.ActionCancel:
		m.opening = false
		m.input.Blur()
		return m, nil
	case keymap.ActionConfirm:
		m.opening = false
		m.input.Blur()
		if locator := m.input.Value(); locator != "" {
			if err := m.ctl.Load(context.Background(), locator); err == nil {
				_ = m.ctl.Play()
			}
			m.status = m.ctl.Status()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func displaySource(locator string) string {
	if len(locator) > 5 && locator[:5] == "data:" {
		return "inline audio"
	}
	return filepath.Base(locator)
}
