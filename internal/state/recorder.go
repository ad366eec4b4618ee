package state

import (
	"context"
	"log/slog"

	"github.com/llehouerou/starlight/internal/playback"
)

// Record saves module changes from sub until it is closed. status is called
// to snapshot the module after each relevant event.
func (m *Manager) Record(sub *playback.Subscription, status func() playback.Status, log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	for {
		select {
		case e := <-sub.Events:
			m.record(e, status, log)
		case <-sub.Done:
			return
		}
	}
}

func (m *Manager) record(e playback.Event, status func() playback.Status, log *slog.Logger) {
	switch ev := e.(type) {
	case playback.Loaded:
		title := ""
		if ev.Info != nil {
			title = ev.Info.Title
		}
		if err := m.AddRecent(context.Background(), ev.Source, title); err != nil {
			log.Warn("record recent source", "source", ev.Source, "error", err)
		}
	case playback.VolumeChange, playback.RateChange, playback.Seeked,
		playback.StateChange, playback.Finished:
	default:
		return
	}
	m.SavePlayback(Snapshot(status()))
}

// Snapshot converts a module status to the persisted form.
func Snapshot(st playback.Status) PlaybackState {
	return PlaybackState{
		Volume:   st.Volume,
		Rate:     st.Rate,
		Source:   st.Source,
		Position: st.Position,
	}
}
