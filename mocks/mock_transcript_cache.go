package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTranscriptCache is a mock implementation of port.TranscriptCache.
type MockTranscriptCache struct {
	mock.Mock
}

func (m *MockTranscriptCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTranscriptCache) Set(ctx context.Context, key, transcript string) error {
	args := m.Called(ctx, key, transcript)
	return args.Error(0)
}
