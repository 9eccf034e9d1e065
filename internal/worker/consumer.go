package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// runDispatcher reads broker deliveries and hands valid job messages to
// the pool. Malformed messages are NACKed without requeue.
func (w *Worker) runDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("message dispatcher started", slog.String("worker_id", w.workerID))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("message dispatcher stopped")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return
			}

			var msg JobMessage
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				w.logger.Error("failed to parse queue message",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				w.nack(delivery.DeliveryTag, false)
				continue
			}

			if _, err := uuid.Parse(msg.JobID); err != nil {
				w.logger.Error("queue message has invalid job_id",
					slog.String("job_id", msg.JobID),
				)
				w.nack(delivery.DeliveryTag, false)
				continue
			}

			msg.DeliveryTag = delivery.DeliveryTag

			select {
			case w.jobsChan <- &msg:
				w.logger.Debug("job dispatched",
					slog.String("job_id", msg.JobID),
					slog.Uint64("delivery_tag", msg.DeliveryTag),
				)
			case <-ctx.Done():
				// requeue so another worker picks it up
				w.nack(delivery.DeliveryTag, true)
				w.logger.Info("message dispatcher stopped while dispatching")
				return
			}
		}
	}
}

func (w *Worker) nack(deliveryTag uint64, requeue bool) {
	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		w.logger.Error("no channel available for nack", slog.Uint64("delivery_tag", deliveryTag))
		return
	}
	if err := channel.Nack(deliveryTag, false, requeue); err != nil {
		w.logger.Error("failed to nack message",
			slog.Uint64("delivery_tag", deliveryTag),
			slog.String("error", err.Error()),
		)
	}
}
