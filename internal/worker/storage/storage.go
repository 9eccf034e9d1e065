package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/mediascan-be/internal/barcode"
	"github.com/cuongbtq/mediascan-be/internal/domain"
	"github.com/cuongbtq/mediascan-be/internal/ocr"
	"github.com/cuongbtq/mediascan-be/internal/qrcode"
	"github.com/cuongbtq/mediascan-be/internal/session"
)

// Storage is the worker-side persistence layer. Lifecycle writes mirror
// transitions already applied to the in-memory job; the PENDING guard on
// MarkProcessing is the only place two writers can race.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// jobRow carries the JSON columns the domain type keeps structured.
type jobRow struct {
	domain.ProcessingJob
	ParamsJSON       []byte `db:"params"`
	ResultsJSON      []byte `db:"results"`
	ErrorDetailsJSON []byte `db:"error_details"`
}

func (r *jobRow) toDomain() (*domain.ProcessingJob, error) {
	job := r.ProcessingJob
	if len(r.ParamsJSON) > 0 {
		job.Params = &domain.ProcessingParams{}
		if err := json.Unmarshal(r.ParamsJSON, job.Params); err != nil {
			return nil, fmt.Errorf("failed to decode job params: %w", err)
		}
	}
	if len(r.ResultsJSON) > 0 {
		job.Results = &domain.JobResults{}
		if err := json.Unmarshal(r.ResultsJSON, job.Results); err != nil {
			return nil, fmt.Errorf("failed to decode job results: %w", err)
		}
	}
	if len(r.ErrorDetailsJSON) > 0 {
		if err := json.Unmarshal(r.ErrorDetailsJSON, &job.ErrorDetails); err != nil {
			return nil, fmt.Errorf("failed to decode job error details: %w", err)
		}
	}
	return &job, nil
}

// GetJobByID retrieves a job from the database by its ID
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*domain.ProcessingJob, error) {
	query := `
		SELECT job_id, job_type, status,
		       input_filename, input_format, input_size_bytes, input_hash,
		       payload, params, results, results_summary,
		       error_code, error_message, error_details,
		       created_at, updated_at, started_at, completed_at,
		       queue_time_ms, processing_time_ms,
		       client_ip, user_agent, session_id
		FROM jobs
		WHERE job_id = $1
	`

	var row jobRow
	err := s.db.GetContext(ctx, &row, query, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return row.toDomain()
}

// MarkProcessing persists a PENDING -> PROCESSING transition already applied
// to the in-memory job, using the status guard as an optimistic lock. Zero
// rows affected means another worker (or a cancellation) won the race.
func (s *Storage) MarkProcessing(ctx context.Context, job *domain.ProcessingJob) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    started_at = $2,
		    queue_time_ms = $3,
		    updated_at = $4
		WHERE job_id = $5
		  AND status = $6
	`

	res, err := s.db.ExecContext(ctx, query,
		job.Status, job.StartedAt, job.QueueTimeMs, job.UpdatedAt,
		job.JobID, domain.JobStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if affected == 0 {
		s.logger.Warn("failed to claim job, already claimed or cancelled",
			slog.String("job_id", job.JobID),
		)
		return domain.ErrJobAlreadyClaimed
	}
	return nil
}

// CompleteJob persists a successful completion: results payload, summary and
// timing fields.
func (s *Storage) CompleteJob(ctx context.Context, job *domain.ProcessingJob) error {
	var resultsJSON []byte
	if job.Results != nil {
		var err error
		resultsJSON, err = json.Marshal(job.Results)
		if err != nil {
			return fmt.Errorf("failed to encode job results: %w", err)
		}
	}

	query := `
		UPDATE jobs
		SET status = $1,
		    results = $2,
		    results_summary = $3,
		    completed_at = $4,
		    processing_time_ms = $5,
		    updated_at = $6
		WHERE job_id = $7
	`

	_, err := s.db.ExecContext(ctx, query,
		job.Status, resultsJSON, job.ResultsSummary,
		job.CompletedAt, job.ProcessingTimeMs, job.UpdatedAt,
		job.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	s.logger.Info("job completed",
		slog.String("job_id", job.JobID),
		slog.String("summary", job.ResultsSummary),
	)
	return nil
}

// FailJob persists a failure with its structured error fields.
func (s *Storage) FailJob(ctx context.Context, job *domain.ProcessingJob) error {
	var detailsJSON []byte
	if job.ErrorDetails != nil {
		var err error
		detailsJSON, err = json.Marshal(job.ErrorDetails)
		if err != nil {
			return fmt.Errorf("failed to encode error details: %w", err)
		}
	}

	query := `
		UPDATE jobs
		SET status = $1,
		    error_code = $2,
		    error_message = $3,
		    error_details = $4,
		    completed_at = $5,
		    processing_time_ms = $6,
		    updated_at = $7
		WHERE job_id = $8
	`

	_, err := s.db.ExecContext(ctx, query,
		job.Status, job.ErrorCode, job.ErrorMessage, detailsJSON,
		job.CompletedAt, job.ProcessingTimeMs, job.UpdatedAt,
		job.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}

	s.logger.Info("job failed",
		slog.String("job_id", job.JobID),
		slog.String("error_code", job.ErrorCode),
	)
	return nil
}

// InsertBarcodeResults stores the enriched barcode rows of a job.
func (s *Storage) InsertBarcodeResults(ctx context.Context, results []*barcode.Result) error {
	query := `
		INSERT INTO barcode_results (
			result_id, job_id, barcode_data, barcode_type, data_length,
			center_x, center_y, width, height, area_pixels,
			quality_score, quality_description,
			checksum_valid, checksum_value, format_valid,
			content_type, country_code, manufacturer_code, product_code, check_digit,
			created_at
		) VALUES (
			:result_id, :job_id, :barcode_data, :barcode_type, :data_length,
			:center_x, :center_y, :width, :height, :area_pixels,
			:quality_score, :quality_description,
			:checksum_valid, :checksum_value, :format_valid,
			:content_type, :country_code, :manufacturer_code, :product_code, :check_digit,
			:created_at
		)
	`

	for _, res := range results {
		if _, err := s.db.NamedExecContext(ctx, query, res); err != nil {
			return fmt.Errorf("failed to insert barcode result: %w", err)
		}
	}
	return nil
}

// InsertQRCodeResults stores the enriched QR rows of a job.
func (s *Storage) InsertQRCodeResults(ctx context.Context, results []qrcode.Result) error {
	query := `
		INSERT INTO qr_code_results (
			result_id, job_id, qr_data, data_type, data_length,
			version, error_correction, modules_count, module_size,
			estimated_capacity, data_utilization,
			center_x, center_y, width, height, area_pixels,
			quality_score, quality_description,
			contains_url, url_shortener, suspicious_content, suspicious,
			parsed_data, created_at
		) VALUES (
			:result_id, :job_id, :qr_data, :data_type, :data_length,
			:version, :error_correction, :modules_count, :module_size,
			:estimated_capacity, :data_utilization,
			:center_x, :center_y, :width, :height, :area_pixels,
			:quality_score, :quality_description,
			:contains_url, :url_shortener, :suspicious_content, :suspicious,
			:parsed_data, :created_at
		)
	`

	for i := range results {
		if _, err := s.db.NamedExecContext(ctx, query, &results[i]); err != nil {
			return fmt.Errorf("failed to insert qr code result: %w", err)
		}
	}
	return nil
}

// InsertOCRResult stores the per-job OCR aggregate row.
func (s *Storage) InsertOCRResult(ctx context.Context, result *ocr.Result) error {
	query := `
		INSERT INTO ocr_results (
			result_id, job_id, full_text, total_blocks, total_characters, total_words,
			language_detected,
			confidence_avg, confidence_min, confidence_max, confidence_stddev,
			low_confidence_blocks,
			email_count, phone_count, url_count, numeric_count,
			sentence_count, paragraph_count,
			created_at
		) VALUES (
			:result_id, :job_id, :full_text, :total_blocks, :total_characters, :total_words,
			:language_detected,
			:confidence_avg, :confidence_min, :confidence_max, :confidence_stddev,
			:low_confidence_blocks,
			:email_count, :phone_count, :url_count, :numeric_count,
			:sentence_count, :paragraph_count,
			:created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("failed to insert ocr result: %w", err)
	}
	return nil
}

// GetSession loads one session record, ErrSessionNotFound when absent.
func (s *Storage) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	var sess session.Session
	query := `SELECT * FROM sessions WHERE session_id = $1`
	err := s.db.GetContext(ctx, &sess, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// SaveSession upserts the full session record.
func (s *Storage) SaveSession(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (
			session_id, client_ip, user_agent, device_type, browser, os,
			created_at, last_activity, last_job_date,
			total_requests, requests_today,
			total_jobs, ocr_jobs, barcode_jobs, qrcode_jobs, combined_jobs,
			successful_jobs, failed_jobs, jobs_today,
			daily_limit, minute_limit,
			avg_processing_time_ms, avg_file_size_bytes,
			blocked, blocked_until, block_reason
		) VALUES (
			:session_id, :client_ip, :user_agent, :device_type, :browser, :os,
			:created_at, :last_activity, :last_job_date,
			:total_requests, :requests_today,
			:total_jobs, :ocr_jobs, :barcode_jobs, :qrcode_jobs, :combined_jobs,
			:successful_jobs, :failed_jobs, :jobs_today,
			:daily_limit, :minute_limit,
			:avg_processing_time_ms, :avg_file_size_bytes,
			:blocked, :blocked_until, :block_reason
		)
		ON CONFLICT (session_id) DO UPDATE SET
			last_activity = EXCLUDED.last_activity,
			last_job_date = EXCLUDED.last_job_date,
			total_requests = EXCLUDED.total_requests,
			requests_today = EXCLUDED.requests_today,
			total_jobs = EXCLUDED.total_jobs,
			ocr_jobs = EXCLUDED.ocr_jobs,
			barcode_jobs = EXCLUDED.barcode_jobs,
			qrcode_jobs = EXCLUDED.qrcode_jobs,
			combined_jobs = EXCLUDED.combined_jobs,
			successful_jobs = EXCLUDED.successful_jobs,
			failed_jobs = EXCLUDED.failed_jobs,
			jobs_today = EXCLUDED.jobs_today,
			daily_limit = EXCLUDED.daily_limit,
			minute_limit = EXCLUDED.minute_limit,
			avg_processing_time_ms = EXCLUDED.avg_processing_time_ms,
			avg_file_size_bytes = EXCLUDED.avg_file_size_bytes,
			blocked = EXCLUDED.blocked,
			blocked_until = EXCLUDED.blocked_until,
			block_reason = EXCLUDED.block_reason
	`
	if _, err := s.db.NamedExecContext(ctx, query, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
