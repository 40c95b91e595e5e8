package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	claudeagent "payfill/internal/agent/claude"
	"payfill/internal/budget"
	"payfill/internal/config"
	"payfill/internal/email/noop"
	"payfill/internal/email/ses"
	"payfill/internal/handler"
	"payfill/internal/pipeline"
	"payfill/internal/port"
	"payfill/internal/router"
	"payfill/internal/service"
	memorystorage "payfill/internal/storage/memory"
	s3storage "payfill/internal/storage/s3"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize storage
	var store port.DocumentStore
	switch cfg.Store.Provider {
	case "s3":
		store, err = s3storage.NewStore(&cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 store: %w", err)
		}
	case "memory":
		store = memorystorage.NewStore()
		log.Printf("main: using in-memory document store; records will not survive restarts")
	default:
		return fmt.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}

	// Initialize notifier
	var notifier port.ReviewNotifier
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = ses.NewSESNotifier(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ReviewerTo)
		if err != nil {
			return fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	case "noop":
		notifier = noop.NewNotifier()
	default:
		return fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}

	// Initialize agents with the daily budget guard on the scoring tier
	extractAgent := claudeagent.NewExtractAgent(&cfg.Agent.Extract)
	tracker := budget.NewTracker(cfg.Budget.DailyLimitUSD)
	scoreAgent := budget.NewGuardedScoringAgent(claudeagent.NewScoreAgent(&cfg.Agent.Score), tracker)

	// Initialize pipeline and services
	runner := pipeline.NewRunner(extractAgent, scoreAgent)
	documentSvc := service.NewDocumentService(runner, store, notifier,
		service.WithMaxFileSize(cfg.Upload.MaxFileSizeMB*1024*1024),
		service.WithRunTimeout(cfg.Server.WriteTimeout),
	)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(documentSvc)
	budgetH := handler.NewBudgetHandler(tracker)
	healthH := handler.NewHealthHandler(version)

	// Setup router
	r := router.Setup(cfg, documentH, budgetH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + 10*time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
