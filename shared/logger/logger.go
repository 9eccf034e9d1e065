package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout or stderr
	AddSource  bool
	TimeFormat string // console output only

	writer io.Writer // test override
}

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// New builds a logger from config. Unknown values fall back to an info
// level console logger on stdout.
func New(config *Config) *Logger {
	var writer io.Writer = os.Stdout
	if config.Output == "stderr" {
		writer = os.Stderr
	}
	if config.writer != nil {
		writer = config.writer
	}

	level := parseLevel(config.Level)

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level:     level,
			AddSource: config.AddSource,
		})
	} else {
		timeFormat := config.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}
		handler = tint.NewHandler(writer, &tint.Options{
			Level:      level,
			AddSource:  config.AddSource,
			TimeFormat: timeFormat,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a console logger at info level.
func NewDefault() *Logger {
	return &Logger{Logger: slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))}
}

// With returns a logger carrying additional key-value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// ForJob returns a logger scoped to one processing job.
func (l *Logger) ForJob(jobID string, jobType string) *Logger {
	return l.With(slog.String("job_id", jobID), slog.String("job_type", jobType))
}

// ForSession returns a logger scoped to one client session.
func (l *Logger) ForSession(sessionID string) *Logger {
	return l.With(slog.String("session_id", sessionID))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
