package httpserver

import (
	"encoding/json"
	"net/http"
)

// CommandRequest is the body of POST /api/command.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse carries the interpreter's textual result.
type CommandResponse struct {
	Result string `json:"result"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// handleCommand forwards one command to the interpreter. Requests are
// served on independent goroutines by net/http; nothing here is shared
// across dispatches, so concurrent commands just work.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Command == "" {
		respondError(w, http.StatusBadRequest, "command is required")
		return
	}

	result := s.dispatcher.Execute(r.Context(), req.Command)
	respondJSON(w, http.StatusOK, CommandResponse{Result: result})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		respondError(w, http.StatusNotFound, "status source not configured")
		return
	}
	respondJSON(w, http.StatusOK, s.status())
}
