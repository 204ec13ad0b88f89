package httpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"botd/internal/logging"
)

func TestLogStreamDeliversLines(t *testing.T) {
	s := newTestServer(nil)
	if err := s.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	defer s.Stop(ctx)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+"/api/log", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The subscription is registered during the upgrade; give the handler
	// a moment before logging the marker line.
	time.Sleep(50 * time.Millisecond)
	logging.Info("stream-test", "marker line")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.Contains(string(msg), "[stream-test] marker line") {
			return
		}
	}
}
