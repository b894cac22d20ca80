package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/learnflow/internal/metrics"
)

func (s *Server) Routes() http.Handler {
	s.validate = newValidator()

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.Gatherer))
	}

	r.Get("/profiles", s.handleProfiles)
	r.Post("/profiles", s.handleCreateProfile)
	r.Delete("/profiles/{id}", s.handleDeleteProfile)

	r.Group(func(r chi.Router) {
		r.Use(s.profileMiddleware)

		r.Get("/coaching-card", s.handleCoachingCard)
		r.Get("/streak", s.handleStreak)
		r.Get("/subjects/urgency", s.handleSubjectUrgency)
		r.Get("/retention/due", s.handleDueCards)
		r.Get("/topics/{id}/verification", s.handleVerification)

		r.Post("/sessions", s.handleStartSession)
		r.Post("/sessions/{id}/events", s.handleAppendEvent)
		r.Post("/sessions/{id}/exchange", s.handleExchange)
		r.Post("/sessions/{id}/complete", s.handleCompleteSession)
	})
	return r
}
