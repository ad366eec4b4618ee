//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

const noTrack = "/org/mpris/MediaPlayer2/TrackList/NoTrack"

// Adapter connects the playback module to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(ctl Controller) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer("starlight", &rootAdapter{}, &playerAdapter{ctl: ctl}),
	}

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the host owns the lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Starlight", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https", "data"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return source.MIMETypes(), nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctl Controller
}

// There is a single session, so there is nothing to skip to.
func (p *playerAdapter) Next() error     { return nil }
func (p *playerAdapter) Previous() error { return nil }

func (p *playerAdapter) Pause() error {
	return p.ctl.Pause()
}

func (p *playerAdapter) PlayPause() error {
	if p.ctl.Status().State == playback.StatePlaying {
		return p.ctl.Pause()
	}
	return p.ctl.Play()
}

func (p *playerAdapter) Stop() error {
	return p.ctl.Stop()
}

func (p *playerAdapter) Play() error {
	return p.ctl.Play()
}

// Seek moves relative to the current position.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.ctl.Status().Position + time.Duration(offset)*time.Microsecond
	p.ctl.Seek(pos)
	return nil
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	st := p.ctl.Status()
	// Stale requests for a previous track are ignored.
	if trackID != "" && st.Source != "" && trackID != formatTrackID(st.Source) {
		return nil
	}
	p.ctl.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	if err := p.ctl.Load(context.Background(), uri); err != nil {
		return err
	}
	if source.IsRemote(uri) {
		return nil // Loads in background; play once loaded
	}
	return p.ctl.Play()
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.ctl.Status().State {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	case playback.StateStopped, playback.StateUnloaded:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.ctl.Status().Rate, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.ctl.SetRate(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.ctl.Status()
	if st.Session == "" {
		return types.Metadata{TrackId: dbus.ObjectPath(noTrack)}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(st.Source)),
		Length:  types.Microseconds(st.Duration.Microseconds()),
	}
	if info := st.Info; info != nil {
		meta.Title = info.Title
		meta.Album = info.Album
		meta.TrackNumber = info.Track
		if info.Artist != "" {
			meta.Artist = []string{info.Artist}
		}
		if !source.IsLocal(st.Source) {
			return meta, nil
		}
		if artPath := player.FindAlbumArt(info.Path); artPath != "" {
			meta.ArtUrl = "file://" + artPath
		}
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.ctl.Status().Volume, nil
}

func (p *playerAdapter) SetVolume(level float64) error {
	p.ctl.SetVolume(level)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctl.Status().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return playback.MinRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return playback.MaxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctl.Status().State.IsLoaded(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.ctl.Status().State.IsLoaded(), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.ctl.Status().State.IsLoaded(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(locator string) string {
	h := fnv.New64a()
	h.Write([]byte(locator))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
