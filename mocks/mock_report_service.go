package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) CompletenessReport(ctx context.Context, since time.Time) (*domain.CompletenessReport, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletenessReport), args.Error(1)
}
