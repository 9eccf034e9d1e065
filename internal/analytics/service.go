package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/mediascan-be/shared/postgresql"
)

// Service computes aggregate usage statistics straight from the jobs
// table. Queries are read-only and bounded by a trailing day window.
type Service struct {
	db *sqlx.DB
}

func NewService(pg *postgresql.Client) *Service {
	return &Service{db: pg.DB()}
}

// NewServiceWithDB wires an existing pool, used by tests.
func NewServiceWithDB(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Stats is the aggregate report for one trailing window.
type Stats struct {
	WindowDays      int            `json:"window_days"`
	TotalJobs       int            `json:"total_jobs"`
	CompletedJobs   int            `json:"completed_jobs"`
	FailedJobs      int            `json:"failed_jobs"`
	CancelledJobs   int            `json:"cancelled_jobs"`
	SuccessRate     float64        `json:"success_rate"`
	JobsByType      map[string]int `json:"jobs_by_type"`
	ErrorsByCode    map[string]int `json:"errors_by_code"`
	AvgProcessingMs float64        `json:"avg_processing_ms"`
	AvgQueueMs      float64        `json:"avg_queue_ms"`
	ActiveSessions  int            `json:"active_sessions"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

type typeCount struct {
	JobType string `db:"job_type"`
	Count   int    `db:"count"`
}

type codeCount struct {
	ErrorCode string `db:"error_code"`
	Count     int    `db:"count"`
}

// Collect builds the report for the trailing windowDays days.
func (s *Service) Collect(ctx context.Context, windowDays int) (*Stats, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	stats := &Stats{
		WindowDays:   windowDays,
		JobsByType:   make(map[string]int),
		ErrorsByCode: make(map[string]int),
		GeneratedAt:  time.Now().UTC(),
	}

	var byStatus []statusCount
	err := s.db.SelectContext(ctx, &byStatus,
		`SELECT status, COUNT(*) AS count FROM jobs WHERE created_at >= $1 GROUP BY status`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by status: %w", err)
	}
	for _, row := range byStatus {
		stats.TotalJobs += row.Count
		switch row.Status {
		case "COMPLETED":
			stats.CompletedJobs = row.Count
		case "FAILED":
			stats.FailedJobs = row.Count
		case "CANCELLED":
			stats.CancelledJobs = row.Count
		}
	}
	if finished := stats.CompletedJobs + stats.FailedJobs; finished > 0 {
		stats.SuccessRate = float64(stats.CompletedJobs) / float64(finished)
	}

	var byType []typeCount
	err = s.db.SelectContext(ctx, &byType,
		`SELECT job_type, COUNT(*) AS count FROM jobs WHERE created_at >= $1 GROUP BY job_type`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by type: %w", err)
	}
	for _, row := range byType {
		stats.JobsByType[row.JobType] = row.Count
	}

	var byCode []codeCount
	err = s.db.SelectContext(ctx, &byCode,
		`SELECT error_code, COUNT(*) AS count FROM jobs
		 WHERE created_at >= $1 AND status = 'FAILED' AND error_code <> ''
		 GROUP BY error_code`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count errors by code: %w", err)
	}
	for _, row := range byCode {
		stats.ErrorsByCode[row.ErrorCode] = row.Count
	}

	var timing struct {
		AvgProcessing *float64 `db:"avg_processing"`
		AvgQueue      *float64 `db:"avg_queue"`
	}
	err = s.db.GetContext(ctx, &timing,
		`SELECT AVG(processing_time_ms) AS avg_processing, AVG(queue_time_ms) AS avg_queue
		 FROM jobs WHERE created_at >= $1 AND status = 'COMPLETED'`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to average job timings: %w", err)
	}
	if timing.AvgProcessing != nil {
		stats.AvgProcessingMs = *timing.AvgProcessing
	}
	if timing.AvgQueue != nil {
		stats.AvgQueueMs = *timing.AvgQueue
	}

	err = s.db.GetContext(ctx, &stats.ActiveSessions,
		`SELECT COUNT(*) FROM sessions WHERE last_activity >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return stats, nil
}
