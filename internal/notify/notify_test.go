package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

func TestUrgencyValues(t *testing.T) {
	if UrgencyLow != 0 {
		t.Errorf("UrgencyLow = %d, want 0", UrgencyLow)
	}
	if UrgencyNormal != 1 {
		t.Errorf("UrgencyNormal = %d, want 1", UrgencyNormal)
	}
	if UrgencyCritical != 2 {
		t.Errorf("UrgencyCritical = %d, want 2", UrgencyCritical)
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	nextID uint32
	err    error
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) Close(_ uint32) error { return nil }

func (f *fakeNotifier) notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.sent...)
}

type pathResolver struct{}

func (pathResolver) Resolve(_ context.Context, locator string) (*source.Resolved, error) {
	return &source.Resolved{Locator: locator, Path: locator}, nil
}

func TestAnnounce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mod := playback.New(player.NewMock(time.Minute), pathResolver{}, playback.DefaultOptions())
		n := &fakeNotifier{}
		sub := mod.Subscribe()
		done := make(chan struct{})
		go func() {
			Announce(sub, n, nil)
			close(done)
		}()

		if err := mod.Load(context.Background(), "/music/first.mp3"); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		_ = mod.Pause()
		if err := mod.Load(context.Background(), "/music/second.mp3"); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		synctest.Wait()

		_ = mod.Close()
		<-done

		got := n.notifications()
		if len(got) != 3 {
			t.Fatalf("sent %d notifications, want 3: %+v", len(got), got)
		}
		if got[0].Title != "first.mp3" || got[0].Urgency != UrgencyLow || got[0].ReplacesID != 0 {
			t.Errorf("first = %+v", got[0])
		}
		if got[1].Title != "Playback error" || got[1].Urgency != UrgencyCritical || got[1].ReplacesID != 1 {
			t.Errorf("second = %+v", got[1])
		}
		if got[1].Body == "" {
			t.Error("error notification has no body")
		}
		if got[2].Title != "second.mp3" || got[2].ReplacesID != 2 {
			t.Errorf("third = %+v", got[2])
		}
	})
}

func TestAnnounceKeepsGoingAfterFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mod := playback.New(player.NewMock(time.Minute), pathResolver{}, playback.DefaultOptions())
		n := &fakeNotifier{err: errors.New("no notification daemon")}
		sub := mod.Subscribe()
		done := make(chan struct{})
		go func() {
			Announce(sub, n, nil)
			close(done)
		}()

		_ = mod.Load(context.Background(), "/music/a.mp3")
		synctest.Wait()

		n.mu.Lock()
		n.err = nil
		n.mu.Unlock()

		_ = mod.Load(context.Background(), "/music/b.mp3")
		synctest.Wait()

		_ = mod.Close()
		<-done

		got := n.notifications()
		if len(got) != 1 || got[0].Title != "b.mp3" || got[0].ReplacesID != 0 {
			t.Errorf("notifications = %+v", got)
		}
	})
}

func TestNotificationForLoaded(t *testing.T) {
	n, ok := notificationFor(playback.Loaded{
		Source: "https://example.com/stream.mp3",
		Info:   &player.TrackInfo{Title: "Song", Artist: "Artist", Album: "Album"},
	})
	if !ok {
		t.Fatal("loaded event produced no notification")
	}
	if n.Title != "Song" || n.Body != "Artist - Album" {
		t.Errorf("notification = %+v", n)
	}

	n, _ = notificationFor(playback.Loaded{
		Source: "/music/x.flac",
		Info:   &player.TrackInfo{Artist: "Artist"},
	})
	if n.Title != "x.flac" || n.Body != "Artist" {
		t.Errorf("fallback notification = %+v", n)
	}
}

func TestNotificationForIgnoresOtherEvents(t *testing.T) {
	for _, e := range []playback.Event{
		playback.Progress{},
		playback.Finished{},
		playback.StateChange{},
		playback.VolumeChange{},
	} {
		if _, ok := notificationFor(e); ok {
			t.Errorf("%s produced a notification", e.Name())
		}
	}
}

func TestNotificationForUsesCoverArt(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "01.mp3")
	cover := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(cover, []byte{0xFF, 0xD8, 0xFF}, 0o600); err != nil {
		t.Fatal(err)
	}

	n, _ := notificationFor(playback.Loaded{Source: track, Info: &player.TrackInfo{Path: track}})
	if n.Icon != cover {
		t.Errorf("Icon = %q, want %q", n.Icon, cover)
	}

	n, _ = notificationFor(playback.Loaded{Source: "https://example.com/01.mp3", Info: &player.TrackInfo{Path: track}})
	if n.Icon != "" {
		t.Errorf("remote source Icon = %q, want none", n.Icon)
	}
}
