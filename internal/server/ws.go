package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/CK6170/Linviz-go/models"
)

// WSMessage is the event envelope sent over WebSocket.
//
// The frontend switches on `type` and treats `data` as an arbitrary JSON object.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSClient wraps a websocket connection with a per-connection write mutex.
// Gorilla WebSocket requires that writes are not concurrent on the same Conn.
type WSClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *WSClient) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// WSHub fans power-method events out to every subscribed browser tab. It
// keeps the events of the latest job so a tab that connects mid-run can
// redraw the convergence plot from the first iterate.
type WSHub struct {
	mu      sync.Mutex
	clients map[*WSClient]struct{}
	replay  [][]byte
	limit   int
}

// NewWSHub returns a hub that keeps up to limit events of the latest job.
// A power-method job emits at most max_iter+2 events.
func NewWSHub(limit int) *WSHub {
	return &WSHub{clients: make(map[*WSClient]struct{}), limit: limit}
}

// Add registers a connection and sends it the latest job's events.
func (h *WSHub) Add(conn *websocket.Conn) *WSClient {
	c := &WSClient{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.replay {
		if c.write(b) != nil {
			break
		}
	}
	h.clients[c] = struct{}{}
	return c
}

// Remove unregisters a client and closes its connection.
func (h *WSHub) Remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *WSHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast marshals msg once and writes it to every client. A started
// event begins a new replay log. It returns the number of clients the write
// succeeded for; failed clients are left to the read loop in handleWSHub.
func (h *WSHub) Broadcast(msg WSMessage) int {
	b, err := json.Marshal(msg)
	if err != nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg.Type == models.EventStarted.String() {
		h.replay = h.replay[:0]
	}
	if len(h.replay) < h.limit {
		h.replay = append(h.replay, b)
	}
	sent := 0
	for c := range h.clients {
		if c.write(b) == nil {
			sent++
		}
	}
	return sent
}
