// Package livereload tells open browser tabs to reload when the site
// changes during development.
//
// The Hub accepts websocket connections from the Script every page includes
// in development mode, and Broadcast sends each of them a reload message.
package livereload

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/render"
)

const (
	// Path is where the Hub is mounted, relative to the base URL.
	Path = "_live"

	// Message is sent to clients when they should reload.
	Message = "reload"

	writeTimeout = 5 * time.Second
)

// Script is the client side of the Hub. Pages that use it connect to Path
// and reload when they receive Message, reconnecting if the server restarts.
type Script struct{}

func (Script) Templates(_ context.Context) []string {
	return nil
}

func (Script) EmbedJS(_ context.Context) []render.JSInline {
	return []render.JSInline{{TemplatePath: "livereload/livereload.js.tmpl", PlaceInFooter: true}}
}

type client struct {
	send chan struct{}
}

// Hub tracks connected clients. The zero value isn't usable, use NewHub.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: map[*client]struct{}{},
		closed:  make(chan struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket connection and holds it
// until the client goes away or the Hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		log.WarnContext(ctx, "error accepting live reload connection", "error", err)
		return
	}
	defer conn.CloseNow() //nolint:errcheck

	// the client never sends anything, CloseRead discards its frames and
	// cancels ctx once the connection is gone
	ctx = conn.CloseRead(ctx)

	c := &client{send: make(chan struct{}, 1)}
	h.add(c)
	defer h.remove(c)
	log.DebugContext(ctx, "live reload client connected", "clients", h.Clients())

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closed:
			if err := conn.Close(websocket.StatusGoingAway, "server shutting down"); err != nil {
				log.DebugContext(ctx, "error closing live reload connection", "error", err)
			}
			return
		case <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, []byte(Message))
			cancel()
			if err != nil {
				log.DebugContext(ctx, "error sending reload", "error", err)
				return
			}
		}
	}
}

// Broadcast asks every connected client to reload and returns how many were
// notified. It never blocks: a client that hasn't consumed its previous
// reload yet doesn't get a second one.
func (h *Hub) Broadcast(ctx context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- struct{}{}:
		default:
		}
	}
	logging.FromContext(ctx).DebugContext(ctx, "broadcast reload", "clients", len(h.clients))
	return len(h.clients)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Connections accepted afterwards are closed
// immediately.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.closed)
	})
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}
