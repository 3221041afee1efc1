package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"firescribe/internal/port"
)

// MockTranscriber is a mock implementation of port.Transcriber.
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, input port.TranscribeInput) (*port.TranscribeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.TranscribeOutput), args.Error(1)
}
