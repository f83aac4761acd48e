package main

import (
	"log"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/MohdFaizan63/Resume-Builder/internal/config"
	"github.com/MohdFaizan63/Resume-Builder/internal/database"
	"github.com/MohdFaizan63/Resume-Builder/internal/logging"
	"github.com/MohdFaizan63/Resume-Builder/internal/metrics"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
	"github.com/MohdFaizan63/Resume-Builder/internal/tasks"
	"github.com/MohdFaizan63/Resume-Builder/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready for worker")

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	scheduler := asynq.NewScheduler(redisOpt, nil)
	reconcileAll, err := tasks.NewReconcileTask(0, "scheduler")
	if err != nil {
		log.Fatalf("build reconcile task: %v", err)
	}
	entryID, err := scheduler.Register(cfg.Worker.ReconcileSchedule, reconcileAll)
	if err != nil {
		log.Fatalf("register reconcile schedule %q: %v", cfg.Worker.ReconcileSchedule, err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}
	defer scheduler.Shutdown()
	logger.Info("reconcile schedule registered",
		slog.String("entry_id", entryID),
		slog.String("spec", cfg.Worker.ReconcileSchedule),
	)

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeReconcileResumeCount, worker.NewReconcileTaskHandler(service.NewAccountService(db), logger))

	logger.Info("worker service started", slog.String("redis_addr", redisOpt.Addr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
