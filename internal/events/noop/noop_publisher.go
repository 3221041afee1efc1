package noop

import (
	"context"
	"log"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

type noopPublisher struct{}

// NewNoopPublisher creates an EventPublisher that logs events instead of
// publishing them. Used when no NATS URL is configured.
func NewNoopPublisher() port.EventPublisher {
	return &noopPublisher{}
}

func (p *noopPublisher) PublishIncidentExtracted(_ context.Context, incident *domain.Incident) error {
	log.Printf("[NOOP EVENT] incident.extracted id=%s source=%s completeness=%.2f",
		incident.ID, incident.Source, incident.Completeness)
	return nil
}

func (p *noopPublisher) PublishExportCompleted(_ context.Context, event port.ExportCompletedEvent) error {
	log.Printf("[NOOP EVENT] export.completed file=%s records=%d", event.FileName, event.IncidentCount)
	return nil
}
