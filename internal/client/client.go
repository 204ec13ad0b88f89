// Package client is the thin-client side of the command channel: connect
// to a running server instance, send one command, hand back the response.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrChannelUnreachable means no server instance answered on the channel.
var ErrChannelUnreachable = errors.New("command server unreachable")

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Send posts one command to the server at addr and returns the textual
// result. No retry, no reconnect: a client invocation is one shot.
func Send(addr, token, command string) (string, error) {
	body, err := json.Marshal(commandRequest{Command: command})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/command", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChannelUnreachable, err)
	}
	defer resp.Body.Close()

	var cr commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if cr.Error != "" {
			return "", fmt.Errorf("server rejected command: %s", cr.Error)
		}
		return "", fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}
	return cr.Result, nil
}

// Status fetches the bot snapshot from the server.
func Status(addr, token string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api/status", nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChannelUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Relay adapts the one-shot Send into the Execute shape local
// interpreters have, so components written against an in-process
// interpreter can instead talk to a remote daemon.
type Relay struct {
	addr  string
	token string
}

func NewRelay(addr, token string) *Relay {
	return &Relay{addr: addr, token: token}
}

func (r *Relay) Execute(ctx context.Context, command string) string {
	result, err := Send(r.addr, r.token, command)
	if err != nil {
		return "Error: " + err.Error()
	}
	return result
}

// Health reports whether a server instance answers on addr.
func Health(ctx context.Context, addr string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
