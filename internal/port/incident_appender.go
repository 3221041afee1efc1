package port

import (
	"context"

	"firescribe/internal/domain"
)

// IncidentAppender is the tabular storage collaborator: it appends one
// finished incident to a durable store. Implementations own spreadsheet
// formula sanitization; it must never be skipped before persistence.
type IncidentAppender interface {
	Append(ctx context.Context, incident *domain.Incident) error
}
