// Package mcpserver exposes the command channel as MCP tools, so agent
// frontends can drive the daemon the same way a thin client does.
package mcpserver

import (
	"context"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Executor runs one textual command and returns its reply. The daemon
// passes its interpreter directly; the stdio entry point passes a relay
// that forwards over the command channel.
type Executor interface {
	Execute(ctx context.Context, command string) string
}

type commandInput struct {
	Command string `json:"command" jsonschema:"Command text, e.g. 'status' or 'pause main'"`
}

type commandOutput struct {
	Result string `json:"result"`
}

type statusInput struct{}

type statusOutput struct {
	Status string `json:"status"`
}

func newServer(interp Executor, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "botd",
			Version: version,
		},
		nil,
	)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "command",
		Description: "Execute one daemon command and return its textual result",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, input commandInput) (*mcpsdk.CallToolResult, commandOutput, error) {
		if input.Command == "" {
			return nil, commandOutput{}, errMissingCommand
		}
		return nil, commandOutput{Result: interp.Execute(ctx, input.Command)}, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "bot_status",
		Description: "Report the state of every bot",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, input statusInput) (*mcpsdk.CallToolResult, statusOutput, error) {
		return nil, statusOutput{Status: interp.Execute(ctx, "status")}, nil
	})

	return server
}

// NewSSEHandler returns the MCP endpoint mounted on the command server.
func NewSSEHandler(interp Executor, version string) http.Handler {
	return mcpsdk.NewSSEHandler(func(r *http.Request) *mcpsdk.Server {
		return newServer(interp, version)
	}, nil)
}

// RunStdio serves MCP over stdio, for instances spawned by an agent with
// a pipe on stdin.
func RunStdio(ctx context.Context, interp Executor, version string) error {
	return newServer(interp, version).Run(ctx, &mcpsdk.StdioTransport{})
}
