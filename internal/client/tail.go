package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
)

// Tail follows the server's live log stream, writing each line to out
// until the context ends or the server goes away.
func Tail(ctx context.Context, addr, token string, out io.Writer) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+addr+"/api/log", header)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChannelUnreachable, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, string(msg))
	}
}
