package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/api"
	"github.com/launchdash/launchdash/server/internal/compute"
	"github.com/launchdash/launchdash/server/internal/config"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// defaultPingPeriod controls how often the server sends ping frames.
	defaultPingPeriod = 54 * time.Second

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageSize bounds one incoming filter message.
	maxMessageSize = 1024
)

// Event names sent to clients.
const (
	EventDataset  = "dataset"
	EventViews    = "views"
	EventSettings = "settings"
	EventError    = "error"
)

// RequestFilter is the only message type clients send.
const RequestFilter = "filter"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are not checked; apply CORS at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients. Seq echoes the request a
// views or error event answers; it is 0 for server-initiated events.
type Message struct {
	Event string `json:"event"`
	Seq   uint64 `json:"seq"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Request is a filter change sent by a client. A blank Site selects the
// configured default site; an empty Payload selects the full dataset range.
// Bounds may be numbers or strings such as "+Inf".
type Request struct {
	Type    string        `json:"type"`
	Seq     uint64        `json:"seq"`
	Site    string        `json:"site"`
	Payload []types.Bound `json:"payload"`
}

// Metrics receives hub activity. *metrics.Registry satisfies it.
type Metrics interface {
	SetClients(n int)
	IncFilters()
}

// Option configures a Hub.
type Option func(*Hub)

// WithPingPeriod sets the keepalive ping interval. Clients that miss a pong
// for 10/9 of it are dropped.
func WithPingPeriod(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingPeriod = d
		}
	}
}

// WithMetrics reports client counts and filter messages to m.
func WithMetrics(m Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// Hub runs the reactive loop: each filter message from a client is answered
// with both views recomputed for the new filter. Settings reloads are
// broadcast to every client.
type Hub struct {
	eng        *compute.Engine
	settings   *config.Settings
	pingPeriod time.Duration
	metrics    Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub answering from eng under the live settings.
func New(eng *compute.Engine, settings *config.Settings, opts ...Option) *Hub {
	h := &Hub{
		eng:        eng,
		settings:   settings,
		pingPeriod: defaultPingPeriod,
		clients:    make(map[*client]struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the dataset description and the views for the default filter
// immediately, then answers filter messages until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)
	slog.Debug("hub: client connected", "client", c.id, "remote", r.RemoteAddr)

	settings := h.settings.Get()
	h.enqueue(c, Message{Event: EventDataset, Data: api.BuildDatasetResponse(h.eng.Dataset(), settings)})
	def := types.FilterState{Site: settings.DefaultSite, Payload: h.eng.Dataset().Bounds()}
	h.enqueue(c, h.answer(r.Context(), 0, def))

	go c.writePump(h.pingPeriod)
	h.readPump(r.Context(), c) // blocks until connection closes
	slog.Debug("hub: client disconnected", "client", c.id)
}

// BroadcastSettings sends d to every connected client.
func (h *Hub) BroadcastSettings(d config.Dashboard) {
	h.broadcast(Message{Event: EventSettings, Data: d})
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.reportClients(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.reportClients(n)
	}
}

func (h *Hub) reportClients(n int) {
	if h.metrics != nil {
		h.metrics.SetClients(n)
	}
}

// trySend queues data for c without blocking. It reports false when c's
// buffer is full. Sends happen under the read lock so that unregister,
// which closes c.send under the write lock, cannot race them.
func (h *Hub) trySend(c *client, data []byte) (ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, live := h.clients[c]; !live {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// enqueue encodes m and queues it for c, dropping c if it cannot keep up.
func (h *Hub) enqueue(c *client, m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("hub: encode message", "event", m.Event, "err", err)
		return
	}
	if !h.trySend(c, data) {
		slog.Warn("hub: client too slow, disconnecting", "client", c.id)
		h.unregister(c)
	}
}

func (h *Hub) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("hub: encode message", "event", m.Event, "err", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !h.trySend(c, data) {
			// Outgoing buffer full: disconnect.
			h.unregister(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.reportClients(0)
}

// answer computes the views for f and wraps them, or the failure, in a
// message tagged with seq.
func (h *Hub) answer(ctx context.Context, seq uint64, f types.FilterState) Message {
	v, err := h.eng.Views(ctx, f)
	if err != nil {
		return errorMessage(seq, err)
	}
	return Message{Event: EventViews, Seq: seq, Data: v}
}

// handle turns one raw client message into a reply.
func (h *Hub) handle(ctx context.Context, raw []byte) Message {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Message{Event: EventError, Error: "malformed message: " + err.Error()}
	}
	if req.Type != RequestFilter {
		return Message{Event: EventError, Seq: req.Seq, Error: fmt.Sprintf("unknown message type %q", req.Type)}
	}
	if h.metrics != nil {
		h.metrics.IncFilters()
	}

	f := types.FilterState{
		Site:    compute.ParseSite(req.Site, h.settings.Get().DefaultSite),
		Payload: h.eng.Dataset().Bounds(),
	}
	switch len(req.Payload) {
	case 0:
	case 2:
		f.Payload = types.PayloadRange{Low: float64(req.Payload[0]), High: float64(req.Payload[1])}
	default:
		return Message{Event: EventError, Seq: req.Seq, Error: "payload must be [low, high]"}
	}
	return h.answer(ctx, req.Seq, f)
}

func errorMessage(seq uint64, err error) Message {
	var ife *compute.InvalidFilterError
	if !errors.As(err, &ife) {
		slog.Error("hub: compute failed", "seq", seq, "err", err)
	}
	return Message{Event: EventError, Seq: seq, Error: err.Error()}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump answers filter messages in arrival order and handles pong and
// close frames. Blocks until the connection closes.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer c.conn.Close()
	pongWait := h.pingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		h.enqueue(c, h.handle(ctx, raw))
	}
}
