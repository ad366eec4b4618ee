package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Path is where the websocket bridge is mounted.
const Path = "/bridge"

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 3 * time.Second
)

// WSHandler serves the bridge over websocket. Each text message is one
// command; every connection receives all module events.
type WSHandler struct {
	hub      Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a handler for hub.
func NewWSHandler(hub Hub, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// wsWriter serializes writes; gorilla connections allow one writer.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteJSON(v)
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	peer := r.RemoteAddr
	h.log.Info("bridge client connected", "peer", peer)
	defer h.log.Info("bridge client disconnected", "peer", peer)

	out := &wsWriter{conn: conn}
	d := NewDispatcher(h.hub, h.log.With("peer", peer))

	sub := h.hub.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		forwardEvents(sub, out.write, h.log)
	}()
	defer func() {
		h.hub.Unsubscribe(sub)
		wg.Wait()
	}()

	ctx := r.Context()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read", "peer", peer, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := out.write(d.HandleLine(ctx, data)); err != nil {
			return
		}
	}
}

// ListenAndServe serves the websocket bridge on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, hub Hub, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(Path, NewWSHandler(hub, log))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	if log != nil {
		log.Info("bridge listening", "addr", addr, "path", Path)
	}
	err := server.ListenAndServe()
	close(done)
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
