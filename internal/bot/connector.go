package bot

import (
	"context"
	"fmt"
	"time"
)

// handshakeConnector stands in for the upstream protocol client. It spends
// a short handshake window holding the login permit, which is what the
// pacing gate exists to serialize.
type handshakeConnector struct {
	delay time.Duration
}

// NewHandshakeConnector returns the default connector used when no real
// protocol client is plugged in.
func NewHandshakeConnector(delay time.Duration) Connector {
	return &handshakeConnector{delay: delay}
}

func (c *handshakeConnector) Login(ctx context.Context, account, password string) error {
	if account == "" {
		return fmt.Errorf("empty account name")
	}
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *handshakeConnector) Logout() {}
