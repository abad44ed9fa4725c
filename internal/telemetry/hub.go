package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	sendChSize      = 64
	broadcastChSize = 256
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 512
)

// Message types on the wire.
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
)

// Envelope wraps every message sent to clients.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

// Hub fans messages out to every connected websocket client. A client
// whose send buffer is full is dropped rather than stalling the others.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]bool
	count      atomic.Int64
	dropped    atomic.Int64
	done       chan struct{}

	mu     sync.RWMutex
	latest []byte

	log zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastChSize),
		clients:    make(map[*client]bool),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "telemetry").Logger(),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.log.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("client connected")
		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.log.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("client disconnected")
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.remove(c)
					h.log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("dropping slow client")
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Publish marshals v into an envelope of the given type and queues it for
// every client. Snapshots are also kept for the HTTP endpoint. It never
// blocks; if the broadcast queue is full the message is dropped.
func (h *Hub) Publish(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	msg, err := json.Marshal(Envelope{Type: kind, Data: data})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if kind == TypeSnapshot {
		h.mu.Lock()
		h.latest = data
		h.mu.Unlock()
	}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// Latest returns the most recent snapshot payload, or nil.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *Hub) Clients() int  { return int(h.count.Load()) }
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// writePump is the only writer on the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client input and notices disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
