package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

// MockEventPublisher is a mock implementation of port.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishIncidentExtracted(ctx context.Context, incident *domain.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishExportCompleted(ctx context.Context, event port.ExportCompletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
