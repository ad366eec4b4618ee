package playback

import (
	"sync"
	"sync/atomic"
)

const eventBufferSize = 64

// Subscription delivers module events in emission order.
//
// Sends never block the module: when a subscriber falls behind by more than
// the buffer, further events are dropped and counted.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	eventCh   chan Event
	doneCh    chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

func newSubscription(size int) *Subscription {
	s := &Subscription{
		eventCh: make(chan Event, size),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// send delivers e without blocking.
func (s *Subscription) send(e Event) {
	select {
	case s.eventCh <- e:
	default:
		s.dropped.Add(1)
	}
}

// close signals subscribers to stop. Events stays open so buffered events
// can still be drained.
func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.doneCh) })
}

// Dropped returns how many events were lost to a full buffer.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}
