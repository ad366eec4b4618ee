package playback

import (
	"context"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

const (
	testInterval = 250 * time.Millisecond
	testDuration = 10 * time.Second
)

// fakeResolver maps locators to paths without touching the filesystem.
// Remote locators block on gate until it is closed or the load is cancelled.
type fakeResolver struct {
	mu    sync.Mutex
	gate  chan struct{}
	err   error
	calls []string
}

func (r *fakeResolver) Resolve(ctx context.Context, locator string) (*source.Resolved, error) {
	r.mu.Lock()
	r.calls = append(r.calls, locator)
	gate, err := r.gate, r.err
	r.mu.Unlock()

	kind := source.KindLocal
	p := locator
	if source.IsRemote(locator) {
		kind = source.KindRemote
		p = "/tmp/" + path.Base(locator)
		if gate != nil {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return &source.Resolved{Locator: locator, Path: p, Kind: kind}, nil
}

func newTestModule(t *testing.T) (*Module, *player.Mock, *fakeResolver) {
	t.Helper()
	p := player.NewMock(testDuration)
	r := &fakeResolver{}
	m := New(p, r, Options{ProgressInterval: testInterval, Volume: 1, Rate: 1})
	t.Cleanup(func() { _ = m.Close() })
	return m, p, r
}

// drain returns every event buffered in sub without blocking.
func drain(sub *Subscription) []Event {
	var out []Event
	for {
		select {
		case e := <-sub.Events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func ofType[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func names(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name()
	}
	return out
}
