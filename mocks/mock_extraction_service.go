package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
	"firescribe/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractFromText(ctx context.Context, input *service.ExtractTextInput) (*domain.Incident, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Incident), args.Error(1)
}

func (m *MockExtractionService) ExtractFromAudio(ctx context.Context, input *service.ExtractAudioInput) (*domain.Incident, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Incident), args.Error(1)
}
