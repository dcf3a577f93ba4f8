package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/keyrun-app/keyrun/internal/errors"
	"github.com/keyrun-app/keyrun/internal/version"
)

func (s *ControlServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   version.GetShortVersion(),
		"commands":  s.session.CommandCount(),
		"timestamp": time.Now().UTC(),
	})
}

func (s *ControlServer) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	commands := s.session.Commands()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"commands": commands,
		"count":    len(commands),
	})
}

func (s *ControlServer) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	candidates := s.session.Suggest(query)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":      query,
		"completed":  s.session.Complete(query),
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (s *ControlServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, version.GetBuildInfo())
}

func (s *ControlServer) handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.session.Activate(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "activated",
	})
}

func (s *ControlServer) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.session.Reload(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "reloaded",
		"count":  s.session.CommandCount(),
	})
}

func (s *ControlServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error(context.Background(), err, "encoding response")
	}
}

func (s *ControlServer) writeError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{
		"error": err.Error(),
	}
	var launchErr *errors.Error
	if stderrors.As(err, &launchErr) {
		body["code"] = launchErr.Code
		body["recoverable"] = launchErr.Recoverable
	}
	s.writeJSON(w, httpStatusFor(err), body)
}

func httpStatusFor(err error) int {
	switch {
	case errors.IsArgument(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsUnsupported(err):
		return http.StatusBadRequest
	case errors.IsConfigParse(err), errors.IsConfigValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
