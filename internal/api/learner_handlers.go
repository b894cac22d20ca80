package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/learnflow/internal/errors"
)

func (s *Server) handleCoachingCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	res, err := s.CoachingService.CoachingCard(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	view, err := s.LearnerService.Streak(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubjectUrgency(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	ranked, err := s.LearnerService.SubjectUrgency(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError("limit must be an integer"))
			return
		}
		limit = n
	}

	cards, err := s.LearnerService.DueCards(r.Context(), profile.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	e, err := s.LearnerService.Verification(r.Context(), profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
