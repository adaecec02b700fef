// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package feed pushes exchange activity to dashboards over websockets.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/adcat/pkg/log"
)

// Notice types
const (
	TypePurchase = "purchase"
	TypeClick    = "click"
	TypeQuery    = "query"
	TypeCost     = "cost"
)

const (
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

// Notice is one event pushed to every connected client
type Notice struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// Publisher receives notices after their event is durable
type Publisher interface {
	Publish(n Notice)
}

// Option configures a Hub
type Option func(*Hub)

// WithClientGauge tracks the number of connected clients in g
func WithClientGauge(g prometheus.Gauge) Option {
	return func(h *Hub) { h.gauge = g }
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans notices out to websocket clients. A client that cannot keep up is
// disconnected; Publish never blocks on a slow client.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	closed   bool
	upgrader websocket.Upgrader
	gauge    prometheus.Gauge
	log      log.Logger
}

// NewHub creates an empty hub
func NewHub(logger log.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and streams notices until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	h.log.Debug("feed client connected", log.String("remote", r.RemoteAddr))

	go h.write(c)

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.log.Debug("feed client disconnected", log.String("remote", r.RemoteAddr))
}

func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Publish sends n to every client
func (h *Hub) Publish(n Notice) {
	msg, err := json.Marshal(n)
	if err != nil {
		h.log.Error("notice not encodable", log.String("type", n.Type), log.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping slow feed client")
			h.dropLocked(c)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.track()
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.track()
}

func (h *Hub) track() {
	if h.gauge != nil {
		h.gauge.Set(float64(len(h.clients)))
	}
}

// Discard is a Publisher that drops every notice
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Notice) {}
