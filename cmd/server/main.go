package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scantrace-service/internal/domain/repository"
	"scantrace-service/internal/infrastructure/config"
	"scantrace-service/internal/infrastructure/events"
	"scantrace-service/internal/infrastructure/persistence"
	"scantrace-service/internal/infrastructure/router"
	"scantrace-service/internal/interface/httpserver"
	mongoRepo "scantrace-service/internal/interface/repository"
	"scantrace-service/internal/usecase"
	"scantrace-service/pkg/bcbp"
	"scantrace-service/pkg/logger"
	"scantrace-service/pkg/metrics"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Scantrace Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	scanRepo := mongoRepo.NewMongoScanRepository(db)
	boardingRepo := mongoRepo.NewMongoBoardingRepository(db)
	baggageRepo := mongoRepo.NewMongoBaggageRepository(db)
	airlineRepo := mongoRepo.NewGormAirlineRepository(gormDB)
	airportRepo := mongoRepo.NewGormAirportRepository(gormDB)

	// Outcome event publisher; empty AMQP URL disables publishing
	var publisher repository.EventPublisher
	if cfg.AmqpURL != "" {
		publisher, err = events.NewAmqpPublisher(cfg.AmqpURL, cfg.OutcomeQueue, cfg.PublishRetry, cfg.PublishBackoff, log)
		if err != nil {
			log.Fatal("Failed to connect to AMQP broker", "error", err)
		}
	} else {
		log.Warn("AMQP URL not set, outcome events disabled")
		publisher = events.NopPublisher{}
	}
	defer publisher.Close()

	m := metrics.NewMetrics("scantrace")

	referenceYear := cfg.ReferenceYear
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	// Set up scan handlers and routing
	decoder := bcbp.NewDecoder(log)
	locks := usecase.NewKeyLocker()

	boardingHandler := usecase.NewBoardingPassHandler(boardingRepo, airlineRepo, airportRepo, decoder, locks, log, referenceYear)
	baggageHandler := usecase.NewBaggageTagHandler(baggageRepo, decoder, locks, log)

	scanRouter := router.NewScanRouter(log)
	scanRouter.Register(boardingHandler)
	scanRouter.Register(baggageHandler)

	processor := usecase.NewScanProcessor(scanRepo, scanRouter, publisher, m, log, cfg.ProcessBatch)
	lifecycle := usecase.NewBaggageLifecycle(baggageRepo, publisher, locks, log)

	// Start pending scan processor in a goroutine
	go func() {
		processTicker := time.NewTicker(cfg.ProcessInterval)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Scan processor stopped")
				return
			case <-processTicker.C:
				for _, airport := range cfg.Airports {
					stats, err := processor.ProcessPendingScans(ctx, airport)
					if err != nil {
						log.Error("Error processing pending scans", "airport", airport, "error", err)
						continue
					}
					if stats.TotalScans > 0 {
						log.Info("Pending scans processed",
							"airport", airport,
							"processed", stats.Processed,
							"errors", stats.Errors)
					}
				}
			}
		}
	}()

	// Set up HTTP server
	api := httpserver.New(processor, lifecycle, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.Mux(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Scantrace Service stopped")
}
