package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

// IncidentService provides read and delete access to stored incidents.
type IncidentService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, offset, limit int) ([]domain.Incident, int, error)
	ListAll(ctx context.Context) ([]domain.Incident, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AudioURL(ctx context.Context, id uuid.UUID) (string, error)
}

type incidentService struct {
	repo          port.IncidentRepository
	storage       port.ObjectStorage // optional
	bucket        string
	presignExpiry int64
}

// NewIncidentService creates an IncidentService. storage may be nil; audio
// playback URLs are then unavailable.
func NewIncidentService(repo port.IncidentRepository, storage port.ObjectStorage, bucket string, presignExpiry int64) IncidentService {
	return &incidentService{
		repo:          repo,
		storage:       storage,
		bucket:        bucket,
		presignExpiry: presignExpiry,
	}
}

func (s *incidentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *incidentService) List(ctx context.Context, offset, limit int) ([]domain.Incident, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *incidentService) ListAll(ctx context.Context) ([]domain.Incident, error) {
	return s.repo.ListSince(ctx, time.Time{})
}

func (s *incidentService) Delete(ctx context.Context, id uuid.UUID) error {
	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// The record is gone; removing the recording is cleanup, not part of the
	// delete contract.
	if s.storage != nil && incident.AudioKey != "" {
		if err := s.storage.Delete(ctx, s.bucket, incident.AudioKey); err != nil {
			log.Printf("incidentService.Delete: removing audio %s: %v", incident.AudioKey, err)
		}
	}
	return nil
}

func (s *incidentService) AudioURL(ctx context.Context, id uuid.UUID) (string, error) {
	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if incident.AudioKey == "" || s.storage == nil {
		return "", domain.ErrNoArchivedAudio
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, incident.AudioKey, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning audio url: %w", err)
	}
	return url, nil
}
