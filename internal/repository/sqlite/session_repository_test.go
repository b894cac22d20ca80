package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
	"github.com/vytor/learnflow/internal/repository/sqlite"
	"github.com/vytor/learnflow/internal/testutil"
)

type SessionRepositorySuite struct {
	suite.Suite
	db       *sql.DB
	sessions repository.SessionRepository
	events   repository.EventRepository
	now      time.Time
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.sessions = sqlite.NewSessionRepository(s.db)
	s.events = sqlite.NewEventRepository(s.db)
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	testutil.InsertProfile(s.T(), s.db, "p1")
	testutil.InsertProfile(s.T(), s.db, "p2")
}

func (s *SessionRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionRepositorySuite) start(id, profileID string) {
	s.Require().NoError(s.sessions.Start(context.Background(), models.Session{
		ID: id, ProfileID: profileID, TopicID: "cells", Mode: models.ModeEvaluate, StartedAt: s.now,
	}))
}

func (s *SessionRepositorySuite) TestStartGetComplete() {
	ctx := context.Background()
	s.start("s1", "p1")

	got, err := s.sessions.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(models.SessionActive, got.Status)
	s.Assert().Equal(models.ModeEvaluate, got.Mode)
	s.Assert().Nil(got.CompletedAt)

	s.Require().NoError(s.sessions.Complete(ctx, "s1", s.now.Add(10*time.Minute)))

	got, err = s.sessions.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Assert().Equal(models.SessionCompleted, got.Status)
	s.Require().NotNil(got.CompletedAt)
	s.Assert().True(s.now.Add(10 * time.Minute).Equal(*got.CompletedAt))
}

func (s *SessionRepositorySuite) TestCompleteOnlyOnce() {
	ctx := context.Background()
	s.start("s1", "p1")

	s.Require().NoError(s.sessions.Complete(ctx, "s1", s.now))
	s.Assert().ErrorIs(s.sessions.Complete(ctx, "s1", s.now.Add(time.Minute)), repository.ErrSessionNotActive)
	s.Assert().ErrorIs(s.sessions.Complete(ctx, "nope", s.now), repository.ErrSessionNotActive)

	got, err := s.sessions.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Require().NotNil(got.CompletedAt)
	s.Assert().True(s.now.Equal(*got.CompletedAt), "second completion must not move completed_at")
}

func (s *SessionRepositorySuite) TestGetMissing() {
	got, err := s.sessions.Get(context.Background(), "nope")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *SessionRepositorySuite) TestCountCompletedSessions() {
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		s.start(id, "p1")
	}
	s.start("other", "p2")
	s.Require().NoError(s.sessions.Complete(ctx, "a", s.now))
	s.Require().NoError(s.sessions.Complete(ctx, "b", s.now))
	s.Require().NoError(s.sessions.Complete(ctx, "other", s.now))

	n, err := s.sessions.CountCompletedSessions(ctx, "p1")
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
}

func (s *SessionRepositorySuite) TestListRecentAIResponses() {
	ctx := context.Background()
	s.start("s1", "p1")

	for i, e := range []models.Event{
		{Kind: models.EventAIResponse, Content: "first"},
		{Kind: models.EventUserMessage, Content: "question"},
		{Kind: models.EventAIResponse, Content: "second"},
		{Kind: models.EventAIResponse, Content: "third"},
	} {
		e.SessionID = "s1"
		e.ProfileID = "p1"
		e.CreatedAt = s.now.Add(time.Duration(i) * time.Minute)
		id, err := s.events.Insert(ctx, e)
		s.Require().NoError(err)
		s.Assert().Greater(id, int64(0))
	}

	events, err := s.events.ListRecentAIResponses(ctx, "s1", "p1", 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Assert().Equal("third", events[0].Content)
	s.Assert().Equal("second", events[1].Content)

	events, err = s.events.ListRecentAIResponses(ctx, "s1", "p2", 5)
	s.Require().NoError(err)
	s.Assert().Empty(events)
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
