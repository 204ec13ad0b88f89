// Package httpserver is the server side of the command channel: a thin
// client invocation of the same binary posts a command here and prints the
// response.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"sync"

	"botd/internal/logging"
)

// Dispatcher executes one command and returns its textual result.
type Dispatcher interface {
	Execute(ctx context.Context, command string) string
}

// Server is the command channel server.
type Server struct {
	mux        *http.Server
	tokens     []string
	version    string
	dispatcher Dispatcher
	status     func() interface{}

	mu       sync.Mutex
	listener net.Listener
	stopOnce sync.Once
	onState  func(listening bool)
}

// New creates a command server. onState is invoked when the server starts
// or stops listening; the shutdown guard hangs off it.
func New(tokens []string, version string, d Dispatcher, status func() interface{}, onState func(listening bool)) *Server {
	if onState == nil {
		onState = func(bool) {}
	}
	s := &Server{
		tokens:     tokens,
		version:    version,
		dispatcher: d,
		status:     status,
		onState:    onState,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.logged(s.handleHealth))
	mux.HandleFunc("/api/command", s.logged(s.authed(s.jsonOnly(s.handleCommand))))
	mux.HandleFunc("/api/status", s.logged(s.authed(s.handleStatus)))
	mux.HandleFunc("/api/log", s.authed(s.handleLogStream))
	s.mux = &http.Server{Handler: mux}
	return s
}

// Handle mounts an extra handler (the MCP endpoint) behind auth.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handler.(*http.ServeMux).Handle(pattern, h)
}

// Start begins listening on addr and serves in the background. It returns
// once the listener is bound, so a concurrently launched client can
// connect immediately.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.onState(true)
	logging.Info("http", "command server listening on %s", ln.Addr())

	go func() {
		if err := s.mux.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Error("http", "serve: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down. Idempotent, and safe to call even if Start
// never ran.
func (s *Server) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.listener != nil
		s.mu.Unlock()
		if started {
			if err := s.mux.Shutdown(ctx); err != nil {
				logging.Warn("http", "shutdown: %v", err)
			}
		}
		s.onState(false)
	})
}
