package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/mediascan-be/internal/metrics"
	"github.com/cuongbtq/mediascan-be/internal/worker/storage"
	"github.com/cuongbtq/mediascan-be/shared/logger"
	"github.com/cuongbtq/mediascan-be/shared/rabbitmq"
)

// Config holds worker configuration.
type Config struct {
	Logger        *logger.Logger
	Storage       *storage.Storage
	RabbitClient  *rabbitmq.Client
	Metrics       *metrics.Metrics
	WorkerID      string
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration

	// Quotas stamped on sessions the worker has to create itself.
	SessionDailyJobs   int
	SessionMinuteLimit int
}

// JobMessage is one queued job handed from the dispatcher to the pool.
type JobMessage struct {
	JobID       string `json:"job_id"`
	DeliveryTag uint64 `json:"-"`
}

// Worker consumes queued scan jobs and runs the enrichment pipeline.
type Worker struct {
	logger       *logger.Logger
	storage      *storage.Storage
	rabbitClient *rabbitmq.Client
	metrics      *metrics.Metrics

	workerID      string
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration

	sessionDailyJobs   int
	sessionMinuteLimit int

	jobsChan chan *JobMessage
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new worker instance.
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:             cfg.Logger,
		storage:            cfg.Storage,
		rabbitClient:       cfg.RabbitClient,
		metrics:            cfg.Metrics,
		workerID:           cfg.WorkerID,
		concurrency:        cfg.Concurrency,
		prefetchCount:      cfg.PrefetchCount,
		jobTimeout:         cfg.JobTimeout,
		sessionDailyJobs:   cfg.SessionDailyJobs,
		sessionMinuteLimit: cfg.SessionMinuteLimit,
		jobsChan:           make(chan *JobMessage, cfg.Concurrency),
		stopChan:           make(chan struct{}),
	}
}

// Start spawns the pool, subscribes to the queue and blocks dispatching
// jobs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.rabbitClient.Consume(w.workerID, w.prefetchCount)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.runDispatcher(ctx, deliveries)
	return nil
}

// Stop gracefully stops the worker pool.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", slog.String("worker_id", w.workerID))
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("worker stopped", slog.String("worker_id", w.workerID))
}
