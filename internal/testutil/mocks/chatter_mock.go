package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/learnflow/internal/llm"
)

// MockChatter is a mock implementation of llm.Chatter
type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}
