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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/config"
	bookingDomain "github.com/GearShare/service-rental/internal/domain/booking"
	"github.com/GearShare/service-rental/internal/handler"
	"github.com/GearShare/service-rental/internal/imaging"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/database"
	"github.com/GearShare/service-rental/internal/platform/kafka"
	"github.com/GearShare/service-rental/internal/platform/logger"
	"github.com/GearShare/service-rental/internal/repository"
	"github.com/GearShare/service-rental/internal/seed"
	"github.com/GearShare/service-rental/internal/storage"
	"github.com/GearShare/service-rental/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, handler.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+handler.ServiceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Run database migrations, then connect
	if err := database.RunMigrations(cfg.DBConfig.MigrationURL(), migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access database pool", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.Issuer, cfg.JWTConfig.TTL)

	// Initialize Kafka producer
	var publisher kafka.Publisher = kafka.NopPublisher{}
	if len(cfg.KafkaConfig.Brokers) > 0 {
		publisher = kafka.NewProducer(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.TopicPrefix, log)
	} else {
		log.Warn("no kafka brokers configured, booking events are dropped")
	}
	defer func() { _ = publisher.Close() }()

	// Initialize storage
	files, err := storage.NewLocalImageStorage(cfg.Storage.UploadDir, "/uploads")
	if err != nil {
		log.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	imageRepo := repository.NewGormImageRepository(db)
	listingRepo := repository.NewGormListingRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	transactor := repository.NewGormTransactor(db)

	// Initialize application services
	services := handler.Services{
		Auth:     application.NewAuthService(userRepo, jwtManager, log),
		Items:    application.NewItemService(itemRepo, files, log),
		Listings: application.NewListingService(listingRepo, itemRepo, log),
		Images:   application.NewImageService(itemRepo, imageRepo, files, imaging.NewProcessor(cfg.Storage.MaxDimension), log),
		Bookings: application.NewBookingService(
			bookingRepo,
			listingRepo,
			transactor,
			bookingDomain.NewDailyRatePricing(),
			publisher,
			log,
		),
	}

	if cfg.SeedDemo {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
		err := seed.Run(seedCtx, seed.Repositories{Users: userRepo, Items: itemRepo, Listings: listingRepo}, log)
		cancelSeed()
		if err != nil {
			log.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}
	router := handler.NewRouter(services, handler.RouterOptions{
		JWT:            jwtManager,
		Logger:         log,
		DB:             sqlDB,
		CORSOrigins:    cfg.CORSOrigins,
		UploadDir:      files.Root(),
		UploadMaxBytes: cfg.Storage.MaxBytes,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + handler.ServiceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(handler.ServiceName + " stopped")
}
