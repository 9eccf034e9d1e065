package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// spawnWorkerPool starts the configured number of processing goroutines.
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop processes jobs until shutdown, acking or nacking each
// delivery based on the processing outcome.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("worker goroutine started", slog.String("worker_name", workerName))

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("worker goroutine stopping", slog.String("worker_name", workerName))
			return

		case <-ctx.Done():
			w.logger.Info("worker goroutine stopping", slog.String("worker_name", workerName))
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}

			err := w.processJob(ctx, msg)

			channel := w.rabbitClient.GetChannel()
			if channel == nil {
				w.logger.Error("no channel available for ack",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
				)
				continue
			}

			if err != nil {
				requeue := w.shouldRequeueJob(err)
				w.logger.Error("job processing failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
					slog.Bool("requeue", requeue),
					slog.String("error", err.Error()),
				)
				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					w.logger.Error("failed to nack message",
						slog.String("job_id", msg.JobID),
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
				w.logger.Error("failed to ack message",
					slog.String("job_id", msg.JobID),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}

// shouldRequeueJob keeps only transient failures on the queue. A job
// another worker claimed, or one with a bad payload, never comes back.
func (w *Worker) shouldRequeueJob(err error) bool {
	if errors.Is(err, domain.ErrJobAlreadyClaimed) {
		return false
	}
	if errors.Is(err, domain.ErrInvalidPayload) {
		return false
	}

	var retryable *domain.RetryableError
	return errors.As(err, &retryable)
}
