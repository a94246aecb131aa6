package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridenow-service/internal/domain/repository"
	"ridenow-service/internal/infrastructure/config"
	"ridenow-service/internal/infrastructure/persistence"
	"ridenow-service/internal/interface/httpapi"
	rideRepo "ridenow-service/internal/interface/repository"
	"ridenow-service/internal/usecase"
	"ridenow-service/pkg/logger"
	"ridenow-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	zapLogger := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer zapLogger.Sync()
	log := zapLogger.With("version", cfg.AppVersion)
	log.Info("Starting Ride Service", "storeBackend", cfg.StoreBackend, "reserveDriver", cfg.ReserveDriver)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(cfg.MetricsNamespace, registry)

	// Set up ride store and saga journal
	var (
		rides       repository.RideRepository
		events      repository.RideEventRepository
		mongoClient *mongo.Client
	)
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		log.Warn("Using in-memory ride store, rides are lost on restart")
		rides = rideRepo.NewMemoryRideRepository()
		events = rideRepo.NewMemoryRideEventRepository()
	default:
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI, log, &rideRepo.Rides{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		rides = rideRepo.NewGormRideRepository(gormDB)

		log.Info("Connecting to MongoDB")
		mongoClient, err = persistence.NewMongoClient(ctx, persistence.MongoConfig{
			URI:            cfg.MongoURI,
			Username:       cfg.MongoUser,
			Password:       cfg.MongoPassword,
			AppName:        "ride-service",
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		events = rideRepo.NewMongoRideEventRepository(persistence.GetDatabase(mongoClient, cfg.MongoDB), log)
	}

	// Set up collaborator clients
	collaboratorConfig := func(baseURL string) rideRepo.CollaboratorClientConfig {
		return rideRepo.CollaboratorClientConfig{
			BaseURL:      baseURL,
			Timeout:      cfg.CollaboratorTimeout,
			RetryMax:     cfg.CollaboratorRetryMax,
			RetryWaitMin: cfg.RetryWaitMin,
			RetryWaitMax: cfg.RetryWaitMax,
		}
	}
	drivers := rideRepo.NewDriverDirectoryRepository(collaboratorConfig(cfg.DriverServiceURL), log)
	pricing := rideRepo.NewPricingRepository(collaboratorConfig(cfg.PricingServiceURL), log)
	payments := rideRepo.NewPaymentRepository(collaboratorConfig(cfg.PaymentServiceURL), log)

	orchestrator := usecase.NewRideOrchestrator(rides, events, drivers, pricing, payments, appMetrics, log, usecase.RideOrchestratorConfig{
		Currency:             cfg.PaymentCurrency,
		CallTimeout:          cfg.CollaboratorTimeout,
		ReserveDriver:        cfg.ReserveDriver,
		CompensationAttempts: cfg.CompensationAttempts,
		CompensationDelay:    cfg.RetryWaitMin,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(orchestrator, registry, log),
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

	// Graceful shutdown lets in-flight sagas reach a terminal status
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Ride Service stopped")
}
