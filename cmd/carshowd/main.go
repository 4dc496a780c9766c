package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"carshow-backend/config"
	"carshow-backend/internal/api"
	"carshow-backend/internal/blob"
	"carshow-backend/internal/db"
	"carshow-backend/internal/notification"
	"carshow-backend/internal/publication"
	"carshow-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "carshow-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Admin.APIKey == "" {
		logger.Println("admin.api_key is not set; admin routes will reject every request")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	photos, err := blob.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize photo storage: %v", err)
	}
	logger.Printf("photo storage ready (bucket %s)", cfg.Storage.Bucket)

	// Push is optional; without VAPID keys results still publish, silently.
	var notifier publication.Notifier
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		})
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	}

	sweeper := publication.NewSweeper(publication.NewScheduler(appStore, notifier),
		cfg.Publication.Interval, cfg.Publication.SweeperEnabled)
	go sweeper.Run(ctx)

	router := api.NewRouter(appStore, photos, cfg, notifier)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
