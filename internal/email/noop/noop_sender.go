package noop

import (
	"context"
	"log"

	"firescribe/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs export notifications
// instead of sending them.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendExportCompletedEmail(_ context.Context, toEmail, fileName string, incidentCount int) error {
	log.Printf("[NOOP EMAIL] Export completed for %s: %s (%d records)", toEmail, fileName, incidentCount)
	return nil
}
