package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"firescribe/internal/csvexport"
	"firescribe/internal/domain"
	"firescribe/internal/fieldset"
	"firescribe/internal/metrics"
	"firescribe/internal/port"
	"firescribe/internal/xlsxexport"
)

// ExportWorkerConfig holds settings for the scheduled export worker.
type ExportWorkerConfig struct {
	Interval      time.Duration
	Dir           string
	Format        domain.ExportFormat
	Profile       string
	NotifyAddress string
}

// ExportWorker periodically writes a full snapshot of stored incidents to a
// timestamped CSV or XLSX file. Each run is a complete snapshot; consumers
// take the newest file.
type ExportWorker struct {
	repo     port.IncidentRepository
	profiles *fieldset.Registry
	email    port.EmailSender
	events   port.EventPublisher
	metrics  *metrics.Metrics
	cfg      ExportWorkerConfig
}

// NewExportWorker creates an ExportWorker.
func NewExportWorker(
	repo port.IncidentRepository,
	profiles *fieldset.Registry,
	email port.EmailSender,
	events port.EventPublisher,
	m *metrics.Metrics,
	cfg ExportWorkerConfig,
) *ExportWorker {
	return &ExportWorker{
		repo:     repo,
		profiles: profiles,
		email:    email,
		events:   events,
		metrics:  m,
		cfg:      cfg,
	}
}

// Start runs the export loop until ctx is canceled. The first export runs
// immediately, later ones on the configured interval.
func (w *ExportWorker) Start(ctx context.Context) {
	log.Printf("exportWorker: started (interval=%s, dir=%s, format=%s)",
		w.cfg.Interval, w.cfg.Dir, w.cfg.Format)

	if err := w.RunOnce(ctx); err != nil {
		log.Printf("exportWorker: export failed: %v", err)
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("exportWorker: shutdown complete")
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("exportWorker: export failed: %v", err)
			}
		}
	}
}

// RunOnce performs a single export. The one-shot exporter CLI calls this
// directly.
func (w *ExportWorker) RunOnce(ctx context.Context) error {
	incidents, err := w.repo.ListSince(ctx, time.Time{})
	if err != nil {
		w.metrics.ExportsTotal.WithLabelValues(string(w.cfg.Format), "error").Inc()
		return fmt.Errorf("listing incidents: %w", err)
	}

	profile, err := w.profiles.Get(w.cfg.Profile)
	if err != nil {
		w.metrics.ExportsTotal.WithLabelValues(string(w.cfg.Format), "error").Inc()
		return err
	}

	fileName := csvexport.BuildFilename("incident_export", string(w.cfg.Format))
	if err := w.writeFile(fileName, incidents, profile.Fields); err != nil {
		w.metrics.ExportsTotal.WithLabelValues(string(w.cfg.Format), "error").Inc()
		return err
	}

	w.metrics.ExportsTotal.WithLabelValues(string(w.cfg.Format), "success").Inc()
	log.Printf("exportWorker: wrote %s (%d incidents)", fileName, len(incidents))

	w.notify(ctx, fileName, len(incidents))
	return nil
}

func (w *ExportWorker) writeFile(fileName string, incidents []domain.Incident, fields []string) error {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	f, err := os.Create(filepath.Join(w.cfg.Dir, fileName))
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if w.cfg.Format == domain.ExportXLSX {
		if err := xlsxexport.Write(f, incidents, fields); err != nil {
			return fmt.Errorf("writing xlsx export: %w", err)
		}
		return nil
	}

	if _, err := f.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	cw := csvexport.NewWriter(f)
	if err := cw.WriteHeader(fields); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	if err := cw.WriteIncidents(incidents, fields); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	return nil
}

// notify sends the completion email and event. Both are best effort.
func (w *ExportWorker) notify(ctx context.Context, fileName string, count int) {
	if w.cfg.NotifyAddress != "" {
		if err := w.email.SendExportCompletedEmail(ctx, w.cfg.NotifyAddress, fileName, count); err != nil {
			log.Printf("exportWorker: notification email: %v", err)
		}
	}

	err := w.events.PublishExportCompleted(ctx, port.ExportCompletedEvent{
		FileName:      fileName,
		Format:        string(w.cfg.Format),
		IncidentCount: count,
		GeneratedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Printf("exportWorker: publish export.completed: %v", err)
	}
}
