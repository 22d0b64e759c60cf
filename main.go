package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/handlers"
	"food-ordering-api/identity"
	"food-ordering-api/logger"
	"food-ordering-api/middleware"
	"food-ordering-api/notify"
	"food-ordering-api/repository"
	"food-ordering-api/routes"
	"food-ordering-api/services"
	"food-ordering-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.Initialize(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, notifier := externalServices(ctx, cfg, log)

	store := repository.NewGormStore(db)
	provider := identity.NewJWTProvider(db, cfg.JWTSecret, cfg.TokenTTL)
	resolver := auth.NewResolver(provider, store.Users())

	h := handlers.New(
		services.NewRegistrationService(provider, store.Users(), notifier, log),
		services.NewRestaurantService(store, blobs, log),
		services.NewOrderService(store, log),
		services.NewReviewService(store, log),
		cfg.MaxUploadBytes,
	)

	limiter := middleware.NewPerMinuteLimiter(cfg.RateLimitPerMinute)
	go limiter.RunSweeper(ctx)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.RequestID(),
		logger.RequestLogger(log),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(limiter),
		apperrors.ErrorMiddleware(log, func(e *apperrors.Error) {
			services.PartialWrites.WithLabelValues(e.Fields["operation"]).Inc()
		}),
	)
	if disk, ok := blobs.(*storage.DiskStore); ok && strings.HasPrefix(cfg.PublicAssetURL, "/") {
		r.Static(cfg.PublicAssetURL, disk.Root())
	}
	routes.SetupRoutes(r, h, resolver)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("server shutdown complete")
}

// externalServices picks S3/SNS when configured, local disk and log-only otherwise
func externalServices(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.BlobStore, notify.Notifier) {
	var (
		blobs    storage.BlobStore
		notifier notify.Notifier = notify.NewLogNotifier(log)
	)

	if cfg.S3Bucket != "" || cfg.SNSTopicARN != "" {
		awsCfg, err := storage.LoadAWSConfig(ctx, cfg.AWSEndpoint)
		if err != nil {
			log.Fatal("failed to load AWS config", zap.Error(err))
		}
		if cfg.S3Bucket != "" {
			blobs = storage.NewS3Store(awsCfg, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSEndpoint)
			log.Info("menu images stored in s3", zap.String("bucket", cfg.S3Bucket))
		}
		if cfg.SNSTopicARN != "" {
			notifier = notify.NewSNSNotifier(awsCfg, cfg.SNSTopicARN)
			log.Info("notifications published to sns", zap.String("topic", cfg.SNSTopicARN))
		}
	}

	if blobs == nil {
		disk, err := storage.NewDiskStore(cfg.UploadDir, cfg.PublicAssetURL)
		if err != nil {
			log.Fatal("failed to prepare upload dir", zap.Error(err))
		}
		blobs = disk
	}
	return blobs, notifier
}
