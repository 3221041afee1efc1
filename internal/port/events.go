package port

import (
	"context"
	"time"

	"firescribe/internal/domain"
)

// ExportCompletedEvent describes one finished scheduled export.
type ExportCompletedEvent struct {
	FileName      string    `json:"file_name"`
	Format        string    `json:"format"`
	IncidentCount int       `json:"incident_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// EventPublisher publishes lifecycle events for downstream consumers.
// Publish failures are logged by callers, never fatal to the request.
type EventPublisher interface {
	PublishIncidentExtracted(ctx context.Context, incident *domain.Incident) error
	PublishExportCompleted(ctx context.Context, event ExportCompletedEvent) error
}
