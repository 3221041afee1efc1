package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
	"firescribe/internal/fieldset"
	"firescribe/internal/metrics"
	"firescribe/internal/port"
	"firescribe/internal/service"
	"firescribe/mocks"
)

func setupExportWorker(t *testing.T, cfg service.ExportWorkerConfig) (*service.ExportWorker, *mocks.MockIncidentRepo, *mocks.MockEmailSender, *mocks.MockEventPublisher) {
	t.Helper()

	repo := new(mocks.MockIncidentRepo)
	email := new(mocks.MockEmailSender)
	events := new(mocks.MockEventPublisher)

	profilesPath := filepath.Join(t.TempDir(), "profiles.yaml")
	err := os.WriteFile(profilesPath, []byte(`profiles:
  - name: quicklook
    fields:
      - city
      - units
`), 0o644)
	if err != nil {
		t.Fatalf("writing profiles file: %v", err)
	}
	profiles, err := fieldset.NewRegistry(profilesPath)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	worker := service.NewExportWorker(
		repo, profiles, email, events,
		metrics.NewWithRegistry(prometheus.NewRegistry()),
		cfg,
	)
	return worker, repo, email, events
}

func exportedIncident(city string) domain.Incident {
	return domain.Incident{
		ID:         uuid.New(),
		CapturedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Source:     domain.SourceText,
		Narrative:  "dispatch narrative",
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		Fields: []domain.FieldValue{
			{Name: "city", Value: city, Confidence: 0.9},
			{Name: "units", Value: "E12", Confidence: 0.8},
		},
		Completeness: 1.0,
	}
}

func singleExportFile(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading export dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one export file, found %d", len(entries))
	}
	return filepath.Join(dir, entries[0].Name())
}

func TestExportWorker_RunOnce_WritesCSVSnapshot(t *testing.T) {
	dir := t.TempDir()
	worker, repo, _, events := setupExportWorker(t, service.ExportWorkerConfig{
		Interval: time.Hour,
		Dir:      dir,
		Format:   domain.ExportCSV,
		Profile:  "quicklook",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return([]domain.Incident{exportedIncident("Oakland"), exportedIncident("Fresno")}, nil)
	events.On("PublishExportCompleted", mock.Anything, mock.MatchedBy(func(ev port.ExportCompletedEvent) bool {
		return ev.Format == "csv" && ev.IncidentCount == 2
	})).Return(nil)

	err := worker.RunOnce(context.Background())

	assert.NoError(t, err)

	path := singleExportFile(t, dir)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "incident_export_"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"))
	assert.Contains(t, content, "id,captured_at,source,provider,model,completeness,narrative,city,units")
	assert.Contains(t, content, "Oakland")
	assert.Contains(t, content, "Fresno")

	events.AssertExpectations(t)
}

func TestExportWorker_RunOnce_WritesXLSXSnapshot(t *testing.T) {
	dir := t.TempDir()
	worker, repo, _, events := setupExportWorker(t, service.ExportWorkerConfig{
		Interval: time.Hour,
		Dir:      dir,
		Format:   domain.ExportXLSX,
		Profile:  "quicklook",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return([]domain.Incident{exportedIncident("Oakland")}, nil)
	events.On("PublishExportCompleted", mock.Anything, mock.Anything).Return(nil)

	err := worker.RunOnce(context.Background())

	assert.NoError(t, err)

	path := singleExportFile(t, dir)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportWorker_RunOnce_SendsNotificationEmail(t *testing.T) {
	dir := t.TempDir()
	worker, repo, email, events := setupExportWorker(t, service.ExportWorkerConfig{
		Interval:      time.Hour,
		Dir:           dir,
		Format:        domain.ExportCSV,
		Profile:       "quicklook",
		NotifyAddress: "chief@example.com",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return([]domain.Incident{exportedIncident("Oakland")}, nil)
	email.On("SendExportCompletedEmail", mock.Anything, "chief@example.com", mock.AnythingOfType("string"), 1).
		Return(nil)
	events.On("PublishExportCompleted", mock.Anything, mock.Anything).Return(nil)

	err := worker.RunOnce(context.Background())

	assert.NoError(t, err)
	email.AssertExpectations(t)
}

func TestExportWorker_RunOnce_NotificationFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	worker, repo, email, events := setupExportWorker(t, service.ExportWorkerConfig{
		Interval:      time.Hour,
		Dir:           dir,
		Format:        domain.ExportCSV,
		Profile:       "quicklook",
		NotifyAddress: "chief@example.com",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return([]domain.Incident{exportedIncident("Oakland")}, nil)
	email.On("SendExportCompletedEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("ses throttled"))
	events.On("PublishExportCompleted", mock.Anything, mock.Anything).
		Return(errors.New("nats: connection closed"))

	err := worker.RunOnce(context.Background())

	assert.NoError(t, err)
}

func TestExportWorker_RunOnce_RepoError(t *testing.T) {
	dir := t.TempDir()
	worker, repo, _, _ := setupExportWorker(t, service.ExportWorkerConfig{
		Interval: time.Hour,
		Dir:      dir,
		Format:   domain.ExportCSV,
		Profile:  "quicklook",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return(nil, errors.New("db connection error"))

	err := worker.RunOnce(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "listing incidents")

	entries, readErr := os.ReadDir(dir)
	assert.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestExportWorker_RunOnce_UnknownProfile(t *testing.T) {
	dir := t.TempDir()
	worker, repo, _, _ := setupExportWorker(t, service.ExportWorkerConfig{
		Interval: time.Hour,
		Dir:      dir,
		Format:   domain.ExportCSV,
		Profile:  "missing-profile",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return([]domain.Incident{}, nil)

	err := worker.RunOnce(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnknownProfile)
}

func TestExportWorker_Start_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	worker, repo, _, events := setupExportWorker(t, service.ExportWorkerConfig{
		Interval: 50 * time.Millisecond,
		Dir:      dir,
		Format:   domain.ExportCSV,
		Profile:  "quicklook",
	})

	repo.On("ListSince", mock.Anything, time.Time{}).
		Return([]domain.Incident{}, nil)
	events.On("PublishExportCompleted", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	// Immediate run plus at least one tick.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 1)
}
