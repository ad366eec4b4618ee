package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/llehouerou/starlight/internal/playback"
)

// maxLineSize bounds one inbound command. Inline data URIs make lines long.
const maxLineSize = 64 << 20

// jsonWriter serializes writers of NDJSON values onto one stream.
type jsonWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONWriter(w io.Writer) *jsonWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &jsonWriter{enc: enc}
}

func (w *jsonWriter) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// ServeStdio reads commands from r and writes replies and events to w until r
// is exhausted. Events are forwarded from a subscription held for the whole
// session.
func ServeStdio(ctx context.Context, hub Hub, r io.Reader, w io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d := NewDispatcher(hub, log)
	out := newJSONWriter(w)

	sub := hub.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		forwardEvents(sub, out.write, log)
	}()
	defer func() {
		hub.Unsubscribe(sub)
		wg.Wait()
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := out.write(d.HandleLine(ctx, line)); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// forwardEvents writes events until sub is closed. Events buffered at close
// are flushed first.
func forwardEvents(sub *playback.Subscription, write func(any) error, log *slog.Logger) {
	defer func() {
		if n := sub.Dropped(); n > 0 {
			log.Warn("subscriber dropped events", "count", n)
		}
	}()
	for {
		select {
		case e := <-sub.Events:
			if err := write(EncodeEvent(e)); err != nil {
				log.Debug("event write failed", "error", err)
				return
			}
		case <-sub.Done:
			for {
				select {
				case e := <-sub.Events:
					if write(EncodeEvent(e)) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}
