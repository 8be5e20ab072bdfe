package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// sessionResult is the payload returned for session creation and turns.
type sessionResult struct {
	SessionID string               `json:"session_id"`
	Response  models.AgentResponse `json:"response"`
}

// handleHealth returns basic liveness plus the live session count.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.Success(map[string]interface{}{
		"status":   "healthy",
		"sessions": s.manager.Count(),
	}))
}

// handleCreateSession starts a new session and returns the greeting. An
// empty body is allowed and uses the configured default profile.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("API.handleCreateSession: invalid JSON body", "error", err)
		writeJSON(w, http.StatusBadRequest, models.Error("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	a := s.manager.Create(req)
	writeJSON(w, http.StatusCreated, models.Success(sessionResult{
		SessionID: a.ID(),
		Response:  a.Greeting(),
	}))
}

// handleEndSession removes a session.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.manager.End(id) {
		writeJSON(w, http.StatusNotFound, models.Error(models.ErrSessionNotFound.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.Success(map[string]string{"session_id": id}))
}

// handleTurn runs one utterance through the session's agent.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := s.manager.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.Error(models.ErrSessionNotFound.Error()))
		return
	}

	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("API.handleTurn: invalid JSON body", "error", err, "session", id)
		writeJSON(w, http.StatusBadRequest, models.Error("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	resp := a.HandleTurn(r.Context(), req.Utterance)
	writeJSON(w, http.StatusOK, models.Success(sessionResult{
		SessionID: id,
		Response:  resp,
	}))
}

// handleTranscript returns the recorded turns for a session.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	turns, err := s.store.GetTurns(id)
	if err != nil {
		slog.Error("API.handleTranscript: store query failed", "error", err, "session", id)
		writeJSON(w, http.StatusInternalServerError, models.Error("failed to load transcript"))
		return
	}
	if turns == nil {
		turns = []models.TurnRecord{}
	}
	writeJSON(w, http.StatusOK, models.Success(turns))
}

// handleSubmissions returns all completed task submissions.
func (s *Server) handleSubmissions(w http.ResponseWriter, _ *http.Request) {
	subs, err := s.store.GetSubmissions()
	if err != nil {
		slog.Error("API.handleSubmissions: store query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.Error("failed to load submissions"))
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	writeJSON(w, http.StatusOK, models.Success(subs))
}
