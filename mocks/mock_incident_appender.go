package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
)

// MockIncidentAppender is a mock implementation of port.IncidentAppender.
type MockIncidentAppender struct {
	mock.Mock
}

func (m *MockIncidentAppender) Append(ctx context.Context, incident *domain.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}
