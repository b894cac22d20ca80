package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/learnflow/internal/llm"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req startSessionRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	sess, err := s.SessionService.StartSession(r.Context(), profile.ID, req.TopicID, models.SessionMode(req.Mode))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if string(sess.Mode) != req.Mode {
		logger.FromContext(r.Context()).Info("session %s started as %s instead of %s", sess.ID, sess.Mode, req.Mode)
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleAppendEvent(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req appendEventRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	ev, err := s.SessionService.AppendEvent(r.Context(), profile.ID, chi.URLParam(r, "id"), models.EventKind(req.Kind), req.Content)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req exchangeRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	msgs := make([]llm.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	}

	ev, err := s.SessionService.Exchange(r.Context(), profile.ID, chi.URLParam(r, "id"), msgs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req completeSessionRequest
	if err := s.decodeJSON(r, &req, true); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.SessionService.CompleteSession(r.Context(), profile.ID, chi.URLParam(r, "id"), req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
