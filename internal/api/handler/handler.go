package handler

import (
	"log/slog"

	"github.com/cuongbtq/mediascan-be/internal/analytics"
	"github.com/cuongbtq/mediascan-be/internal/api/storage"
	"github.com/cuongbtq/mediascan-be/internal/config"
	"github.com/cuongbtq/mediascan-be/internal/metrics"
	"github.com/cuongbtq/mediascan-be/shared/postgresql"
	"github.com/cuongbtq/mediascan-be/shared/rabbitmq"
)

// Dependencies holds everything the HTTP handlers need.
type Dependencies struct {
	Logger       *slog.Logger
	DBClient     *postgresql.Client
	RabbitClient *rabbitmq.Client
	Storage      *storage.Storage
	Analytics    *analytics.Service
	Metrics      *metrics.Metrics
	Limits       config.LimitsConfig
}

// JobHandler serves the job, session and analytics endpoints.
type JobHandler struct {
	logger       *slog.Logger
	storage      *storage.Storage
	rabbitClient *rabbitmq.Client
	analytics    *analytics.Service
	metrics      *metrics.Metrics
	limits       config.LimitsConfig
}

// NewJobHandler creates a new JobHandler instance.
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:       deps.Logger,
		storage:      deps.Storage,
		rabbitClient: deps.RabbitClient,
		analytics:    deps.Analytics,
		metrics:      deps.Metrics,
		limits:       deps.Limits,
	}
}
