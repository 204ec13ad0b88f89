package httpserver

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"botd/internal/logging"
)

// authed validates Bearer token authentication. With no tokens configured
// the channel is open, which matches running on a loopback bind.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.tokens) == 0 {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "invalid Authorization header format (expected 'Bearer <token>')")
			return
		}

		for _, valid := range s.tokens {
			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(valid)) == 1 {
				next(w, r)
				return
			}
		}
		respondError(w, http.StatusUnauthorized, "invalid token")
	}
}

// jsonOnly ensures POST requests carry a JSON Content-Type.
func (s *Server) jsonOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next(w, r)
	}
}

// logged records each request with its duration.
func (s *Server) logged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		logging.Info("http", "%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Truncate(time.Millisecond))
	}
}
