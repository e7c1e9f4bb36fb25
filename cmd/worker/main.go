package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ad-server/internal/config"
	fraudProcessor "ad-server/internal/fraud/processor"
	"ad-server/internal/jobs"
	"ad-server/internal/jobs/scheduler"
	"ad-server/internal/jobs/workers"
	"ad-server/internal/observability"
	"ad-server/internal/store"

	"github.com/hibiken/asynq"
)

func main() {
	logger := observability.NewLogger()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.Info(ctx, "starting background worker server...")

	dataStore, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}

	jobClient := jobs.NewClient(cfg.Redis.Addr, logger)
	defer jobClient.Close()

	fraudProc := fraudProcessor.New(&dataStore, cfg.Fraud, logger)
	fraudWorker := workers.NewFraudWorker(fraudProc, jobClient, logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				jobs.QueueHigh:   5,
				jobs.QueueMedium: 3,
				jobs.QueueLow:    2,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error(ctx, fmt.Sprintf("task %s failed", task.Type()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TypeFraudScan, fraudWorker.ProcessFraudScanTask)
	mux.HandleFunc(jobs.TypeFraudSweep, fraudWorker.ProcessFraudSweepTask)

	// Periodic sweep over all active campaigns
	schedCtx, cancelSched := context.WithCancel(ctx)
	sched := scheduler.New(logger)
	sched.Register(scheduler.NewFraudSweepJob(jobClient, cfg.Fraud.ScanInterval))
	go func() {
		if err := sched.Start(schedCtx); err != nil && schedCtx.Err() == nil {
			logger.Error(ctx, "scheduler stopped with error", err)
		}
	}()

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Fatalf("failed to run worker server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "shutting down worker server...")
	cancelSched()
	srv.Shutdown()
	logger.Info(ctx, "worker server exited")
}
