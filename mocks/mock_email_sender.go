package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendExportCompletedEmail(ctx context.Context, toEmail, fileName string, incidentCount int) error {
	args := m.Called(ctx, toEmail, fileName, incidentCount)
	return args.Error(0)
}
