package notify

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

const announceTimeout = 5000

// Announce shows a notification for every loaded track and every playback
// error received on sub, until sub is closed. Each notification replaces the
// previous one.
func Announce(sub *playback.Subscription, n Notifier, log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	var lastID uint32
	for {
		select {
		case e := <-sub.Events:
			notif, ok := notificationFor(e)
			if !ok {
				continue
			}
			notif.ReplacesID = lastID
			id, err := n.Notify(notif)
			if err != nil {
				log.Debug("desktop notification failed", "error", err)
				continue
			}
			lastID = id
		case <-sub.Done:
			return
		}
	}
}

func notificationFor(e playback.Event) (Notification, bool) {
	switch ev := e.(type) {
	case playback.Loaded:
		n := Notification{
			Title:   filepath.Base(ev.Source),
			Timeout: announceTimeout,
			Urgency: UrgencyLow,
		}
		if ev.Info != nil {
			if ev.Info.Title != "" {
				n.Title = ev.Info.Title
			}
			n.Body = joinNonEmpty(" - ", ev.Info.Artist, ev.Info.Album)
			if source.IsLocal(ev.Source) {
				n.Icon = player.FindAlbumArt(ev.Info.Path)
			}
		}
		return n, true
	case playback.ErrorEvent:
		return Notification{
			Title:   "Playback error",
			Body:    ev.Message,
			Timeout: announceTimeout,
			Urgency: UrgencyCritical,
		}, true
	}
	return Notification{}, false
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
