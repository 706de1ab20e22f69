package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/bus"
	"gitlab.com/smsdesk/sms-contact-service/internal/config"
	"gitlab.com/smsdesk/sms-contact-service/internal/healthcheck"
	"gitlab.com/smsdesk/sms-contact-service/internal/httpapi"
	"gitlab.com/smsdesk/sms-contact-service/internal/ingestion"
	"gitlab.com/smsdesk/sms-contact-service/internal/lifecycle"
	"gitlab.com/smsdesk/sms-contact-service/internal/observer"
	"gitlab.com/smsdesk/sms-contact-service/internal/storage"
	"gitlab.com/smsdesk/sms-contact-service/internal/uinotify"
	"gitlab.com/smsdesk/sms-contact-service/internal/usecase"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metricsEnabled := cfg.Metrics.Enabled
	observer.InitMetrics(metricsEnabled)

	logger.Log.Info("Starting SMS contact service",
		zap.String("environment", cfg.Environment),
		zap.String("nats_url", cfg.NATS.URL),
		zap.String("sqlite_path", cfg.Database.SQLitePath),
	)

	// Initialize the SQLite repository. Opening it runs the schema check and,
	// on a version bump, the destructive upgrade.
	sqliteRepo, err := storage.NewSQLiteRepo(cfg.Database.SQLitePath, cfg.Database.SchemaVersion)
	if err != nil {
		logger.Log.Fatal("Failed to initialize SQLite repository", zap.Error(err))
	}

	// Connect to NATS
	busClient, err := bus.NewClient(cfg.NATS)
	if err != nil {
		logger.Log.Fatal("Failed to connect to NATS", zap.Error(err))
	}

	// Create repository adapters for the service
	contactRepo := storage.NewContactRepoAdapter(sqliteRepo)
	messageRepo := storage.NewMessageRepoAdapter(sqliteRepo)

	// Create the outbound send worker pool
	sender, err := usecase.NewSender(cfg.WorkerPools.Send, usecase.LogRadioSender{}, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to initialize send worker pool", zap.Error(err))
	}

	tracker := lifecycle.NewTracker()

	// Create service
	service := usecase.NewSmsService(
		contactRepo,
		messageRepo,
		busClient,
		uinotify.NewLogNotifier(),
		tracker,
		sender,
	)

	// Wire the event router and start consuming
	router := ingestion.NewRouter()
	ingestion.RegisterHandlers(router, service)
	consumer := ingestion.NewConsumer(busClient, router, cfg.NATS)

	startupCtx := logger.WithLogger(context.Background(), logger.Log)
	if err := consumer.Start(startupCtx); err != nil {
		logger.Log.Fatal("Failed to start event consumer", zap.Error(err))
	}

	// REST API server
	apiServer := httpapi.NewServer(cfg.Server.Port, service, tracker)
	utils.SafeGo(func() {
		if err := apiServer.Start(); err != nil {
			logger.Log.Fatal("HTTP API server failed", zap.Error(err))
		}
	}, nil)

	// Health check server with readiness probes
	healthServer := healthcheck.NewServer(strconv.Itoa(cfg.Health.Port), logger.Log,
		healthcheck.ReadyCheck{
			Name: "sqlite",
			Check: func(ctx context.Context) error {
				_, err := contactRepo.FindAll(ctx)
				return err
			},
		},
		healthcheck.ReadyCheck{
			Name: "nats",
			Check: func(ctx context.Context) error {
				if !busClient.NatsConn().IsConnected() {
					return fmt.Errorf("not connected")
				}
				return nil
			},
		},
	)
	if metricsEnabled {
		healthServer.RegisterMetricsHandler(promhttp.Handler())
		logger.Log.Info("Metrics endpoint enabled", zap.String("path", "/metrics"), zap.Int("port", cfg.Health.Port))
	} else {
		logger.Log.Info("Metrics endpoint disabled", zap.String("environment", cfg.Environment))
	}
	healthServer.Start()

	logger.Log.Info("Service ready",
		zap.String("api", fmt.Sprintf("http://localhost:%d/contacts", cfg.Server.Port)),
		zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port)),
	)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", 30*time.Second))

	var wg sync.WaitGroup
	wg.Add(4)

	// Stop consuming new events first
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping event consumer")
		start := time.Now()
		consumer.Stop(logger.WithLogger(shutdownCtx, logger.Log))
		logger.Log.Info("[shutdown] Event consumer stopped",
			zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping event consumer",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Drain the send worker pool
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping send worker pool")
		start := time.Now()
		sender.Stop()
		logger.Log.Info("[shutdown] Send worker pool stopped",
			zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping send worker pool",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Stop the HTTP servers
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping HTTP servers")
		start := time.Now()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping HTTP API server", zap.Error(err))
		}
		if err := healthServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping health check server", zap.Error(err))
		}
		logger.Log.Info("[shutdown] HTTP servers stopped",
			zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping HTTP servers",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Close the database and the NATS connection
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Closing SQLite database")
		dbStart := time.Now()
		if err := sqliteRepo.Close(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Failed to close SQLite database", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] SQLite database closed",
				zap.Duration("duration", time.Since(dbStart)))
		}

		logger.Log.Info("[shutdown] Closing NATS connection")
		natsStart := time.Now()
		busClient.Close()
		logger.Log.Info("[shutdown] NATS connection closed",
			zap.Duration("duration", time.Since(natsStart)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while closing connections",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Log.Info("[shutdown] All components stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Log.Warn("[shutdown] Graceful shutdown timed out, forcing exit")
	}

	logger.Log.Info("SMS contact service shutdown complete")
}
