package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/jdstudio/internal/types"
)

// handleLogin forwards the sidebar login form to the backend and returns its session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.backend.Login(r.Context(), &req)
	if err != nil {
		log.Printf("[AUTH] Login failed for %q: %v", req.Username, err)
		s.failure(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
