package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"loaddocs/internal/config"
	"loaddocs/internal/decision"
	"loaddocs/internal/extract"
	"loaddocs/internal/handler"
	"loaddocs/internal/notify"
	"loaddocs/internal/ocr"
	"loaddocs/internal/port"
	"loaddocs/internal/repository/postgres"
	"loaddocs/internal/router"
	"loaddocs/internal/semantic"
	"loaddocs/internal/service"
	s3storage "loaddocs/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Repositories
	driverRepo := postgres.NewDriverRepo(db)
	loadRepo := postgres.NewLoadRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	// Object storage
	storage, err := s3storage.NewObjectStorage(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// Recognition with optional fallback provider
	limiter := ocr.NewLimiter(cfg.OCR.MaxConcurrent)
	primary := ocr.NewClient(&cfg.OCR.Primary, &cfg.OCR)
	var secondary ocr.Recognizer
	if cfg.OCR.Fallback.Configured() {
		secondary = ocr.NewClient(&cfg.OCR.Fallback, &cfg.OCR)
	}
	recognizer := ocr.NewFallbackRecognizer(primary, secondary, limiter)

	// Event channel
	var notifier port.EventNotifier
	if cfg.Events.RedisURL != "" {
		redisNotifier, err := notify.NewRedisNotifier(&cfg.Events)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisNotifier.Close()
		notifier = redisNotifier
	} else {
		notifier = notify.NewNoopNotifier()
	}

	// Optional cross-validation booster; nil disables it.
	var crossVal port.CrossValidator
	if validator := semantic.NewValidator(&cfg.Semantic); validator != nil {
		crossVal = validator
	}

	// Services
	docService := service.NewDocumentService(
		docRepo, driverRepo, loadRepo, storage, recognizer,
		extract.NewRegistry(), decision.NewEngine(), crossVal, notifier, &cfg.S3,
	)
	driverService := service.NewDriverService(driverRepo, docRepo)
	loadService := service.NewLoadService(loadRepo, driverRepo)

	// Handlers
	mediaH := handler.NewMediaHandler(docService)
	driverH := handler.NewDriverHandler(driverService)
	loadH := handler.NewLoadHandler(loadService)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(mediaH, driverH, loadH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Queue worker shares the signal context and drains on shutdown.
	worker := service.NewProcessQueueWorker(docRepo, docService, cfg.Queue)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	log.Printf("shutdown complete")
	return nil
}
