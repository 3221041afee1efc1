package port

import "context"

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	SendExportCompletedEmail(ctx context.Context, toEmail, fileName string, incidentCount int) error
}
