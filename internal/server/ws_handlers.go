package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader upgrades HTTP requests to WebSockets.
//
// CheckOrigin allows every origin; the server binds to localhost by default.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWSPower streams power-method jobs started via
// /api/power-method/stream.
func (s *Server) handleWSPower(w http.ResponseWriter, r *http.Request) {
	s.handleWSHub(w, r, s.wsPower)
}

// handleWSHub upgrades, registers and then reads until the client goes away.
// Incoming messages are ignored.
func (s *Server) handleWSHub(w http.ResponseWriter, r *http.Request, hub *WSHub) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := hub.Add(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Remove(client)
			return
		}
	}
}
