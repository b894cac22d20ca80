package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vytor/learnflow/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	ProfileService  services.ProfileService
	SessionService  services.SessionService
	CoachingService services.CoachingService
	LearnerService  services.LearnerService

	DB       Pinger
	Gatherer prometheus.Gatherer

	validate *validator.Validate
}

func (s *Server) validator() *validator.Validate {
	if s.validate == nil {
		s.validate = newValidator()
	}
	return s.validate
}
