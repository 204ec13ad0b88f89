package httpserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"botd/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // auth happens at the HTTP layer
	},
}

// handleLogStream upgrades the connection and forwards log lines until the
// client disconnects.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("http", "log stream upgrade: %v", err)
		return
	}

	lines, cancel := logging.Subscribe()
	defer cancel()
	defer conn.Close()

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(strings.TrimRight(line, "\n"))); err != nil {
				return
			}
		}
	}
}
