package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"firescribe/internal/domain"
	"firescribe/internal/extract"
	"firescribe/internal/fieldset"
	"firescribe/internal/metrics"
	"firescribe/internal/port"
)

// ExtractTextInput is the DTO for a text-narrative extraction. An explicit
// field list wins over the profile name; with neither, the default profile
// applies.
type ExtractTextInput struct {
	Narrative string
	Fields    []string
	Profile   string
}

// ExtractAudioInput is the DTO for an audio-upload extraction.
type ExtractAudioInput struct {
	Audio       []byte
	ContentType string
	FileName    string
	Fields      []string
	Profile     string
}

// ExtractionConfig holds the scalar settings of the extraction pipeline.
type ExtractionConfig struct {
	AudioBucket         string
	MaxAudioBytes       int64
	MissingFieldPenalty float64
}

// ExtractionService runs the full pipeline: narrative in, stored incident
// out.
type ExtractionService interface {
	ExtractFromText(ctx context.Context, input *ExtractTextInput) (*domain.Incident, error)
	ExtractFromAudio(ctx context.Context, input *ExtractAudioInput) (*domain.Incident, error)
}

type extractionService struct {
	extractor   *extract.Extractor
	transcriber port.Transcriber
	cache       port.TranscriptCache
	appender    port.IncidentAppender
	repo        port.IncidentRepository
	storage     port.ObjectStorage // optional
	events      port.EventPublisher
	profiles    *fieldset.Registry
	metrics     *metrics.Metrics
	cfg         ExtractionConfig
}

// NewExtractionService creates an ExtractionService. storage may be nil; the
// service then skips audio archival and leaves AudioKey empty.
func NewExtractionService(
	extractor *extract.Extractor,
	transcriber port.Transcriber,
	cache port.TranscriptCache,
	appender port.IncidentAppender,
	repo port.IncidentRepository,
	storage port.ObjectStorage,
	events port.EventPublisher,
	profiles *fieldset.Registry,
	m *metrics.Metrics,
	cfg ExtractionConfig,
) ExtractionService {
	return &extractionService{
		extractor:   extractor,
		transcriber: transcriber,
		cache:       cache,
		appender:    appender,
		repo:        repo,
		storage:     storage,
		events:      events,
		profiles:    profiles,
		metrics:     m,
		cfg:         cfg,
	}
}

func (s *extractionService) resolveFields(explicit []string, profile string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	p, err := s.profiles.Get(profile)
	if err != nil {
		return nil, err
	}
	return p.Fields, nil
}

func (s *extractionService) ExtractFromText(ctx context.Context, input *ExtractTextInput) (*domain.Incident, error) {
	narrative := strings.TrimSpace(input.Narrative)
	if narrative == "" {
		return nil, domain.ErrEmptyNarrative
	}

	fields, err := s.resolveFields(input.Fields, input.Profile)
	if err != nil {
		return nil, err
	}

	return s.assembleAndStore(ctx, uuid.New(), narrative, "", domain.SourceText, fields)
}

func (s *extractionService) ExtractFromAudio(ctx context.Context, input *ExtractAudioInput) (*domain.Incident, error) {
	if len(input.Audio) == 0 {
		return nil, domain.ErrEmptyAudio
	}
	if _, ok := domain.AllowedAudioTypes[input.ContentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAudio, input.ContentType)
	}
	if s.cfg.MaxAudioBytes > 0 && int64(len(input.Audio)) > s.cfg.MaxAudioBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrAudioTooLarge, len(input.Audio))
	}

	fields, err := s.resolveFields(input.Fields, input.Profile)
	if err != nil {
		return nil, err
	}

	transcript, err := s.transcribe(ctx, input)
	if err != nil {
		s.metrics.ExtractionsTotal.WithLabelValues(string(domain.SourceAudio), "transcription_failed").Inc()
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("%w: transcriber returned no text", domain.ErrEmptyNarrative)
	}

	incidentID := uuid.New()
	audioKey := s.archiveAudio(ctx, incidentID, input)

	return s.assembleAndStore(ctx, incidentID, strings.TrimSpace(transcript), audioKey, domain.SourceAudio, fields)
}

// transcribe resolves the transcript, consulting the cache first. Cache
// failures degrade to a miss, never to a request failure.
func (s *extractionService) transcribe(ctx context.Context, input *ExtractAudioInput) (string, error) {
	digest := sha256.Sum256(input.Audio)
	key := hex.EncodeToString(digest[:])

	cached, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("extractionService.transcribe: cache get: %v", err)
	}
	if hit {
		s.metrics.TranscriptCacheOps.WithLabelValues("hit").Inc()
		return cached, nil
	}
	s.metrics.TranscriptCacheOps.WithLabelValues("miss").Inc()

	start := time.Now()
	out, err := s.transcriber.Transcribe(ctx, port.TranscribeInput{
		Audio:       input.Audio,
		ContentType: input.ContentType,
		FileName:    input.FileName,
	})
	if err != nil {
		return "", err
	}
	s.metrics.TranscribeDuration.Observe(time.Since(start).Seconds())

	if err := s.cache.Set(ctx, key, out.Text); err != nil {
		log.Printf("extractionService.transcribe: cache set: %v", err)
	}
	return out.Text, nil
}

// archiveAudio uploads the source audio for audit playback. Archival is best
// effort; a storage failure never fails the extraction.
func (s *extractionService) archiveAudio(ctx context.Context, incidentID uuid.UUID, input *ExtractAudioInput) string {
	if s.storage == nil {
		return ""
	}

	key := "audio/" + incidentID.String() + domain.ExtensionForAudioType(input.ContentType)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.AudioBucket,
		Key:         key,
		Body:        bytes.NewReader(input.Audio),
		ContentType: input.ContentType,
		Size:        int64(len(input.Audio)),
	})
	if err != nil {
		log.Printf("extractionService.archiveAudio: upload %s: %v", key, err)
		return ""
	}
	return key
}

func (s *extractionService) assembleAndStore(ctx context.Context, id uuid.UUID, narrative, audioKey string, source domain.IncidentSource, fields []string) (*domain.Incident, error) {
	start := time.Now()
	result, err := s.extractor.Extract(ctx, narrative, fields)
	if err != nil {
		s.metrics.ExtractionsTotal.WithLabelValues(string(source), outcomeLabel(err)).Inc()
		return nil, err
	}
	s.metrics.GenerateDuration.WithLabelValues(result.Provider).Observe(time.Since(start).Seconds())
	s.metrics.RecoveryStages.WithLabelValues(string(result.Stage)).Inc()

	incident := &domain.Incident{
		ID:         id,
		CapturedAt: time.Now().UTC(),
		Source:     source,
		Narrative:  narrative,
		AudioKey:   audioKey,
		Provider:   result.Provider,
		Model:      result.Model,
		Fields:     result.Fields,
	}
	incident.Completeness = domain.CompletenessScore(len(incident.MissingFields()), s.cfg.MissingFieldPenalty)

	if err := s.appender.Append(ctx, incident); err != nil {
		return nil, fmt.Errorf("appending incident to csv store: %w", err)
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("storing incident: %w", err)
	}

	if err := s.events.PublishIncidentExtracted(ctx, incident); err != nil {
		log.Printf("extractionService: publish incident.extracted for %s: %v", incident.ID, err)
	}

	s.metrics.ExtractionsTotal.WithLabelValues(string(source), "success").Inc()
	s.metrics.Completeness.Observe(incident.Completeness)

	log.Printf("extractionService: stored incident %s (source=%s, provider=%s, stage=%s, completeness=%.2f)",
		incident.ID, source, incident.Provider, result.Stage, incident.Completeness)
	return incident, nil
}

// outcomeLabel buckets a pipeline error into a bounded metric label.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoFieldsRequested), errors.Is(err, domain.ErrDuplicateField):
		return "invalid_request"
	case errors.Is(err, domain.ErrBackendTimeout):
		return "backend_timeout"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, domain.ErrUnrecoverableOutput):
		return "unrecoverable_output"
	default:
		return "error"
	}
}
