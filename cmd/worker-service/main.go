package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cuongbtq/mediascan-be/internal/config"
	"github.com/cuongbtq/mediascan-be/internal/metrics"
	"github.com/cuongbtq/mediascan-be/internal/worker"
	workerstorage "github.com/cuongbtq/mediascan-be/internal/worker/storage"
	"github.com/cuongbtq/mediascan-be/shared/logger"
	"github.com/cuongbtq/mediascan-be/shared/postgresql"
	"github.com/cuongbtq/mediascan-be/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger := initLogger(&cfg.Logging)

	workerID := fmt.Sprintf("worker-%s", uuid.New().String()[:8])

	appLogger.Info("starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("worker_id", workerID),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("database connection established")

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rabbitmq: %w", err)
	}

	appLogger.Info("rabbitmq connection established")

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Expose /metrics when a server port is configured.
	if cfg.Server.Port > 0 {
		go serveMetrics(cfg.Server.Port, appLogger.Logger)
	}

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:             appLogger,
		Storage:            workerstorage.NewStorage(dbClient.DB(), appLogger.Logger),
		RabbitClient:       rabbitClient,
		Metrics:            appMetrics,
		WorkerID:           workerID,
		Concurrency:        cfg.Worker.Concurrency,
		PrefetchCount:      cfg.RabbitMQ.Consumer.PrefetchCount,
		JobTimeout:         cfg.Worker.JobTimeout,
		SessionDailyJobs:   cfg.Limits.SessionDailyJobs,
		SessionMinuteLimit: cfg.Limits.RequestsPerMinute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("worker service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("worker error", slog.Any("error", err))
		return err
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("worker shutdown timeout exceeded, forcing exit")
	}

	if dbClient != nil {
		dbClient.Close()
	}
	if rabbitClient != nil {
		rabbitClient.Close()
	}

	appLogger.Info("worker service shutdown complete")
	return nil
}

// serveMetrics runs the prometheus scrape endpoint.
func serveMetrics(port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics endpoint listening", slog.String("address", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics endpoint failed", slog.Any("error", err))
	}
}

// initLogger configures the application logger
func initLogger(cfg *config.LoggingConfig) *logger.Logger {
	return logger.New(&logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		AddSource:  cfg.EnableCaller,
		TimeFormat: time.RFC3339,
	})
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	return postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		User:          cfg.User,
		Password:      cfg.Password,
		VHost:         cfg.VHost,
		ExchangeName:  cfg.Exchange.Name,
		ExchangeType:  cfg.Exchange.Type,
		QueueName:     cfg.Queue.Name,
		RoutingKey:    cfg.RoutingKey,
		RetryAttempts: cfg.Connection.RetryAttempts,
		RetryInterval: cfg.Connection.RetryInterval,
		Heartbeat:     cfg.Connection.Heartbeat,
	}, logger)
}
