package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MohdFaizan63/Resume-Builder/internal/api"
	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/config"
	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/logging"
	"github.com/MohdFaizan63/Resume-Builder/internal/notify"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
	"github.com/MohdFaizan63/Resume-Builder/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.String("db", cfg.Database.Name),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	authService, err := auth.LoadAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	resumeOpts := []service.ResumeOption{
		service.WithLogger(logger),
		service.WithHistoryLimit(cfg.Resume.ViewHistoryLimit),
		service.WithPageSize(cfg.Resume.DefaultPageSize, cfg.Resume.MaxPageSize),
	}
	if cfg.Resume.NotifyOwnerOnView {
		resumeOpts = append(resumeOpts, service.WithNotifier(notify.NewPublisher(redisClient)))
	}

	router := api.NewRouter(api.Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Auth:     authService,
		Storage:  storageClient,
		Logger:   logger,
		Resumes:  service.NewResumeService(db, resumeOpts...),
		Accounts: service.NewAccountService(db),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
