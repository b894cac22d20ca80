package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/learnflow/internal/coaching"
	"github.com/vytor/learnflow/internal/repository"
	"github.com/vytor/learnflow/internal/repository/sqlite"
	"github.com/vytor/learnflow/internal/testutil"
)

type CoachingCacheRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.CoachingCacheRepository
	now  time.Time
}

func (s *CoachingCacheRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCoachingCacheRepository(s.db)
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	testutil.InsertProfile(s.T(), s.db, "p1")
}

func (s *CoachingCacheRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CoachingCacheRepositorySuite) TestRoundTrip() {
	ctx := context.Background()
	card := coaching.Select("p1", nil, nil, s.now)

	s.Require().NoError(s.repo.UpsertCache(ctx, "p1", card, *card.ExpiresAt))

	entry, err := s.repo.GetCache(ctx, "p1")
	s.Require().NoError(err)
	s.Require().NotNil(entry)
	if diff := cmp.Diff(card, entry.CardData); diff != "" {
		s.T().Errorf("card mismatch (-want +got):\n%s", diff)
	}
	s.Assert().True(entry.ExpiresAt.Equal(*card.ExpiresAt))
}

func (s *CoachingCacheRepositorySuite) TestUpsertReplaces() {
	ctx := context.Background()
	first := coaching.Select("p1", nil, nil, s.now)
	second := coaching.Select("p1", nil, nil, s.now.Add(time.Hour))

	s.Require().NoError(s.repo.UpsertCache(ctx, "p1", first, *first.ExpiresAt))
	s.Require().NoError(s.repo.UpsertCache(ctx, "p1", second, *second.ExpiresAt))

	entry, err := s.repo.GetCache(ctx, "p1")
	s.Require().NoError(err)
	s.Assert().Equal(second.ID, entry.CardData.ID)

	var rows int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM coaching_card_cache`).Scan(&rows))
	s.Assert().Equal(1, rows)
}

func (s *CoachingCacheRepositorySuite) TestDelete() {
	ctx := context.Background()
	card := coaching.Select("p1", nil, nil, s.now)
	s.Require().NoError(s.repo.UpsertCache(ctx, "p1", card, *card.ExpiresAt))

	s.Require().NoError(s.repo.DeleteCache(ctx, "p1"))

	entry, err := s.repo.GetCache(ctx, "p1")
	s.Require().NoError(err)
	s.Assert().Nil(entry)
}

func (s *CoachingCacheRepositorySuite) TestCorruptRowIsError() {
	_, err := s.db.Exec(`INSERT INTO coaching_card_cache (profile_id, card_data, expires_at) VALUES (?, ?, ?)`,
		"p1", `{"type":"horoscope"}`, s.now)
	s.Require().NoError(err)

	_, err = s.repo.GetCache(context.Background(), "p1")
	s.Assert().Error(err)
}

func TestCoachingCacheRepositorySuite(t *testing.T) {
	suite.Run(t, new(CoachingCacheRepositorySuite))
}
