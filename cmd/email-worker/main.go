// Entry point for the worker sending shift summary emails
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"timeclock.service/internal/config"
	"timeclock.service/internal/core"
	"timeclock.service/internal/ports/repository"
	"timeclock.service/internal/worker"
	"timeclock.service/internal/worker/email"
	"timeclock.service/pkg/aws"
	"timeclock.service/pkg/database"
	"timeclock.service/pkg/logger"
	"timeclock.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry tracing
	shutdownTracer, err := telemetry.InitTracer("timeclock-email-worker", cfg.OTelEndpoint, cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// Canceled on SIGINT/SIGTERM, which stops polling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB connection
	db, err := database.NewInstrumentedConnection(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	// AWS SDK config
	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize dependencies
	sqsClient := aws.NewSQSClient(awsCfg, cfg)
	sesClient := aws.NewSESClient(awsCfg, cfg)
	repo := repository.NewTimeClockRepository(db)
	emailService := core.NewSESEmailService(sesClient, cfg.EmailSender, cfg.EmailDomain)
	processor := email.NewProcessor(emailService, repo)

	// Start worker
	app := worker.NewWorker(sqsClient, cfg.EmailSQSQueueURL, processor, cfg.WorkerConcurrency)
	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
	}

	log.Info().Msg("Worker exited gracefully")
}
