package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"study-spotter-backend/config"
	"study-spotter-backend/internal/api"
	"study-spotter-backend/internal/catalog"
	"study-spotter-backend/internal/db"
	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/metrics"
	"study-spotter-backend/internal/notification"
	"study-spotter-backend/internal/refresher"
	"study-spotter-backend/internal/reservation"
	"study-spotter-backend/internal/store"
)

func main() {
	logger := logging.For("main")

	// Secrets may be kept in a local .env file; a missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("failed to read .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warnf("no configuration at %s, using built-in defaults", configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatalf("invalid log configuration: %v", err)
	}
	logger.Infof("configuration loaded from %s", configPath)

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		logger.Fatalf("failed to load catalog: %v", err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, cfg.Log.Level)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Info("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.UpsertCatalog(ctx, cat.Locations, cat.Rooms); err != nil {
		logger.Fatalf("failed to store catalog: %v", err)
	}

	appMetrics := metrics.New()

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Warn("VAPID keys are not configured; reservation push notifications are disabled")
	}

	var poolOpts []notification.PoolOption
	if cfg.Email.Enabled() {
		poolOpts = append(poolOpts, notification.WithEmail(notification.NewEmailSender(cfg.Email)))
	}

	var notifier api.Notifier
	if webpushOptions != nil || len(poolOpts) > 0 {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, appMetrics, poolOpts...)
		pool.Start(ctx)
		notifier = pool
	}

	rooms := reservation.NewController(cat.Rooms, reservation.WithLocation(cfg.Simulator.Location))
	refresh := refresher.NewService(&cfg.Simulator, cat.Locations,
		refresher.WithStore(appStore),
		refresher.WithMetrics(appMetrics),
	)

	router := api.NewRouter(&cfg.Server, api.Deps{
		Rooms:     rooms,
		Locations: refresh,
		Store:     appStore,
		Metrics:   appMetrics,
		Notifier:  notifier,
		WebPush:   webpushOptions,
		Timezone:  cfg.Simulator.Location,
	})
	stopRefresh := refresh.Start(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server Shutdown: %v", err)
	}
	stopRefresh()
	cancel()

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Server gracefully stopped")
}
