// Package nats publishes incident lifecycle events for downstream consumers
// such as CAD dashboards and analytics pipelines.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

// incidentExtractedEvent is the wire shape for extraction events. It carries
// record metadata only; narrative text stays out of the bus.
type incidentExtractedEvent struct {
	ID           uuid.UUID `json:"id"`
	CapturedAt   time.Time `json:"captured_at"`
	Source       string    `json:"source"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	FieldCount   int       `json:"field_count"`
	Completeness float64   `json:"completeness"`
}

// Publisher is a NATS-backed EventPublisher.
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewPublisher connects to the NATS server. The connection retries in the
// background, so a broker restart does not take the API down with it.
func NewPublisher(url, subjectPrefix string) (*Publisher, error) {
	if subjectPrefix == "" {
		subjectPrefix = "firescribe"
	}

	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("nats.Publisher: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats.Publisher: reconnected")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: conn, subjectPrefix: subjectPrefix}, nil
}

func (p *Publisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) PublishIncidentExtracted(_ context.Context, incident *domain.Incident) error {
	return p.publish(p.subjectPrefix+".incident.extracted", incidentExtractedEvent{
		ID:           incident.ID,
		CapturedAt:   incident.CapturedAt,
		Source:       string(incident.Source),
		Provider:     incident.Provider,
		Model:        incident.Model,
		FieldCount:   len(incident.Fields),
		Completeness: incident.Completeness,
	})
}

func (p *Publisher) PublishExportCompleted(_ context.Context, event port.ExportCompletedEvent) error {
	return p.publish(p.subjectPrefix+".export.completed", event)
}

// Close drains the connection.
func (p *Publisher) Close() {
	p.conn.Close()
}
