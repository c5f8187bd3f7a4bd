package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stocktide/stocktide/internal/app"
	jobmetrics "github.com/stocktide/stocktide/internal/jobs"
	"github.com/stocktide/stocktide/internal/platform/db"
	"github.com/stocktide/stocktide/internal/rollup"
	"github.com/stocktide/stocktide/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	rollupRepo := rollup.NewRepository(pool)
	rollupService := rollup.NewService(rollupRepo, logger)

	metrics := jobmetrics.NewMetrics(nil)
	rollupJob := jobs.NewMonthlyRollupJob(rollupService, logger, metrics)

	// Zero scheduled_for makes the handler stamp the run with its own clock,
	// so cron retries stay inside the same calendar day guard.
	rollupTask, err := jobs.NewMonthlyRollupTask(time.Time{})
	if err != nil {
		logger.Error("build rollup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMonthlyRollup, Handler: rollupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 0 1 * *", Task: rollupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
