// Command exporter writes a snapshot of stored incidents to a timestamped
// CSV or XLSX file, the same export the server produces on its schedule.
// One-shot by default; pass -every to keep exporting on an interval.
// Usage: go run ./cmd/exporter [-dir exports] [-format csv|xlsx] [-profile neris] [-every 1h]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"firescribe/internal/config"
	"firescribe/internal/domain"
	noopemail "firescribe/internal/email/noop"
	"firescribe/internal/email/ses"
	natsevents "firescribe/internal/events/nats"
	noopevents "firescribe/internal/events/noop"
	"firescribe/internal/fieldset"
	"firescribe/internal/metrics"
	"firescribe/internal/port"
	"firescribe/internal/repository/sqldb"
	"firescribe/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "", "Output directory (default from config)")
	format := flag.String("format", "", "Export format, csv or xlsx (default from config)")
	profile := flag.String("profile", "", "Field profile to export (default from config)")
	every := flag.Duration("every", 0, "Export repeatedly on this interval instead of once")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dir == "" {
		*dir = cfg.Export.Dir
	}
	if *format == "" {
		*format = cfg.Export.Format
	}
	if *profile == "" {
		*profile = cfg.Fields.DefaultProfile
	}
	f := domain.ExportFormat(*format)
	if f != domain.ExportCSV && f != domain.ExportXLSX {
		return fmt.Errorf("unknown export format %q", *format)
	}

	db, err := sqldb.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	profiles, err := fieldset.NewRegistry(cfg.Fields.ProfilesPath)
	if err != nil {
		return fmt.Errorf("failed to load field profiles: %w", err)
	}
	if _, err := profiles.Get(*profile); err != nil {
		return fmt.Errorf("unknown field profile %q: %w", *profile, err)
	}

	var email port.EmailSender
	if cfg.Email.Provider == "ses" {
		email, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		email = noopemail.NewNoopSender()
	}

	var events port.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsevents.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer pub.Close()
		events = pub
	} else {
		events = noopevents.NewNoopPublisher()
	}

	worker := service.NewExportWorker(sqldb.NewIncidentRepo(db), profiles, email, events, metrics.New(),
		service.ExportWorkerConfig{
			Interval:      *every,
			Dir:           *dir,
			Format:        f,
			Profile:       *profile,
			NotifyAddress: cfg.Email.NotifyAddress,
		})

	if *every > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		worker.Start(ctx)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return worker.RunOnce(ctx)
}
