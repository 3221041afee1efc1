package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"firescribe/internal/domain"
)

// IncidentRepository abstracts the incident history store.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, offset, limit int) ([]domain.Incident, int, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.Incident, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
