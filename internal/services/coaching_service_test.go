package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/coaching"
	"github.com/vytor/learnflow/internal/errors"
	"github.com/vytor/learnflow/internal/services"
)

type mockCardSource struct {
	mock.Mock
}

func (m *mockCardSource) Get(ctx context.Context, profileID string, now time.Time) (coaching.Result, error) {
	args := m.Called(ctx, profileID, now)
	return args.Get(0).(coaching.Result), args.Error(1)
}

func TestCoachingService_PassesClockThrough(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	src := new(mockCardSource)
	src.On("Get", mock.Anything, "p1", now).Return(coaching.ColdStart(), nil)

	res, err := services.NewCoachingService(src, func() time.Time { return now }).CoachingCard(context.Background(), "p1")

	require.NoError(t, err)
	assert.True(t, res.ColdStart)
	assert.Len(t, res.Fallback, 3)
	src.AssertExpectations(t)
}

func TestCoachingService_WrapsFailure(t *testing.T) {
	src := new(mockCardSource)
	src.On("Get", mock.Anything, "p1", mock.Anything).Return(coaching.Result{}, stderrors.New("db gone"))

	_, err := services.NewCoachingService(src, nil).CoachingCard(context.Background(), "p1")

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
}
