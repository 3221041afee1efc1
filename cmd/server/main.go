package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	noopcache "firescribe/internal/cache/noop"
	rediscache "firescribe/internal/cache/redis"
	"firescribe/internal/config"
	"firescribe/internal/csvexport"
	"firescribe/internal/domain"
	noopemail "firescribe/internal/email/noop"
	"firescribe/internal/email/ses"
	natsevents "firescribe/internal/events/nats"
	noopevents "firescribe/internal/events/noop"
	"firescribe/internal/extract"
	"firescribe/internal/fieldset"
	"firescribe/internal/generate"
	"firescribe/internal/generate/claude"
	"firescribe/internal/generate/gemini"
	"firescribe/internal/generate/ollama"
	"firescribe/internal/generate/openai"
	"firescribe/internal/handler"
	"firescribe/internal/metrics"
	"firescribe/internal/port"
	"firescribe/internal/repository/sqldb"
	"firescribe/internal/router"
	"firescribe/internal/service"
	s3storage "firescribe/internal/storage/s3"
	"firescribe/internal/transcribe/whisper"
)

// @title FireScribe API
// @version 1.0
// @description Structured field extraction service for emergency incident narratives
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqldb.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := sqldb.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	// Field profiles
	profiles, err := fieldset.NewRegistry(cfg.Fields.ProfilesPath)
	if err != nil {
		return fmt.Errorf("failed to load field profiles: %w", err)
	}
	if cfg.Fields.Watch {
		if err := profiles.Watch(ctx); err != nil {
			return fmt.Errorf("failed to watch field profiles: %w", err)
		}
	}
	defaultProfile, err := profiles.Get(cfg.Fields.DefaultProfile)
	if err != nil {
		return fmt.Errorf("unknown default profile %q: %w", cfg.Fields.DefaultProfile, err)
	}

	// Initialize stores. The CSV file is the capture sink, the SQL repo
	// serves reads.
	store := csvexport.NewStore(cfg.CSV.Path, defaultProfile.Fields)
	incidentRepo := sqldb.NewIncidentRepo(db)

	// Audio archival is optional; without a bucket uploads are transcribed
	// and discarded.
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	var cache port.TranscriptCache
	if cfg.Redis.Addr != "" {
		cache, err = rediscache.NewTranscriptCache(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		cache = noopcache.NewNoopCache()
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

	var email port.EmailSender
	if cfg.Email.Provider == "ses" {
		email, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		email = noopemail.NewNoopSender()
	}

	// Initialize the generation backend
	registerGeneratorProviders()
	generator, err := buildGenerator(&cfg.Generator)
	if err != nil {
		return err
	}
	extractor := extract.New(generator, cfg.Generator.JSONMode)
	transcriber := whisper.NewTranscriber(&cfg.Transcribe)

	m := metrics.New()

	// Initialize services
	extractionSvc := service.NewExtractionService(
		extractor, transcriber, cache, store, incidentRepo, storage, events, profiles, m,
		service.ExtractionConfig{
			AudioBucket:         cfg.S3.Bucket,
			MaxAudioBytes:       cfg.S3.MaxFileSizeMB * 1024 * 1024,
			MissingFieldPenalty: cfg.Audit.MissingFieldPenalty,
		})
	incidentSvc := service.NewIncidentService(incidentRepo, storage, cfg.S3.Bucket, cfg.S3.PresignExpiry)
	reportSvc := service.NewReportService(incidentRepo)
	authSvc := service.NewAuthService(cfg.Auth, cfg.JWT)

	// Scheduled exports
	if cfg.Export.IntervalMins > 0 {
		worker := service.NewExportWorker(incidentRepo, profiles, email, events, m, service.ExportWorkerConfig{
			Interval:      time.Duration(cfg.Export.IntervalMins) * time.Minute,
			Dir:           cfg.Export.Dir,
			Format:        domain.ExportFormat(cfg.Export.Format),
			Profile:       cfg.Fields.DefaultProfile,
			NotifyAddress: cfg.Email.NotifyAddress,
		})
		go worker.Start(ctx)
	}

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	extractionH := handler.NewExtractionHandler(extractionSvc)
	incidentH := handler.NewIncidentHandler(incidentSvc, profiles)
	reportH := handler.NewReportHandler(reportSvc)
	fieldsH := handler.NewFieldsHandler(profiles)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, authH, extractionH, incidentH, reportH, fieldsH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (env: %s)", cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// registerGeneratorProviders wires every compiled-in generation backend into
// the factory. Registration is explicit so stripped-down builds can drop
// providers they never configure.
func registerGeneratorProviders() {
	generate.RegisterProvider("openai", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return openai.NewGenerator(cfg), nil
	})
	generate.RegisterProvider("claude", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return claude.NewGenerator(cfg), nil
	})
	generate.RegisterProvider("gemini", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return gemini.NewGenerator(cfg), nil
	})
	generate.RegisterProvider("ollama", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return ollama.NewGenerator(cfg), nil
	})
}

// buildGenerator assembles the configured provider chain. A single provider
// is returned as-is, multiple providers are wrapped in a fallback chain tried
// in order.
func buildGenerator(cfg *config.GeneratorConfig) (port.Generator, error) {
	var generators []port.Generator
	var names []string
	for _, pc := range []*config.GeneratorProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
		if pc == nil {
			continue
		}
		g, err := generate.NewGenerator(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s generator: %w", pc.Provider, err)
		}
		generators = append(generators, g)
		names = append(names, pc.Provider)
	}
	if len(generators) == 1 {
		return generators[0], nil
	}
	return generate.NewFallbackGenerator(generators, names), nil
}
