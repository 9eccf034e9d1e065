package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/mediascan-be/internal/barcode"
	"github.com/cuongbtq/mediascan-be/internal/domain"
	"github.com/cuongbtq/mediascan-be/internal/ocr"
	"github.com/cuongbtq/mediascan-be/internal/qrcode"
	"github.com/cuongbtq/mediascan-be/internal/session"
	"github.com/cuongbtq/mediascan-be/shared/postgresql"
)

// Storage is the API-side persistence layer for jobs, sessions and
// result rows.
type Storage struct {
	db *sqlx.DB
	pg *postgresql.Client
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{db: pg.DB(), pg: pg}
}

// NewStorageWithDB wires an existing pool, used by tests.
func NewStorageWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db, pg: postgresql.NewClientWithDB(db, slog.New(slog.DiscardHandler))}
}

// jobRow extends the domain job with the JSON columns the domain type
// keeps as structured fields.
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

const jobColumns = `
	job_id, job_type, status,
	input_filename, input_format, input_size_bytes, input_hash,
	payload, params, results, results_summary,
	error_code, error_message, error_details,
	created_at, updated_at, started_at, completed_at,
	queue_time_ms, processing_time_ms,
	client_ip, user_agent, session_id`

// CreateJob inserts a freshly submitted PENDING job.
func (s *Storage) CreateJob(ctx context.Context, job *domain.ProcessingJob) error {
	return createJob(ctx, s.db, job)
}

// CreateJobWithSession inserts the submitted job and upserts its owning
// session in a single transaction, so an accepted job always has a
// session row behind it.
func (s *Storage) CreateJobWithSession(ctx context.Context, job *domain.ProcessingJob, sess *session.Session) error {
	return s.pg.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := createJob(ctx, tx, job); err != nil {
			return err
		}
		return saveSession(ctx, tx, sess)
	})
}

func createJob(ctx context.Context, e sqlx.ExtContext, job *domain.ProcessingJob) error {
	var paramsJSON []byte
	if job.Params != nil {
		var err error
		paramsJSON, err = json.Marshal(job.Params)
		if err != nil {
			return fmt.Errorf("failed to encode job params: %w", err)
		}
	}

	query := `
		INSERT INTO jobs (
			job_id, job_type, status,
			input_filename, input_format, input_size_bytes, input_hash,
			payload, params,
			created_at, updated_at,
			client_ip, user_agent, session_id
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9,
			$10, $11,
			$12, $13, $14
		)
	`

	_, err := e.ExecContext(ctx, query,
		job.JobID, job.JobType, job.Status,
		job.InputFilename, job.InputFormat, job.InputSizeBytes, job.InputHash,
		job.Payload, paramsJSON,
		job.CreatedAt, job.UpdatedAt,
		job.ClientIP, job.UserAgent, job.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJobByID loads one job with its structured columns decoded.
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*domain.ProcessingJob, error) {
	var row jobRow
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	err := s.db.GetContext(ctx, &row, query, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return row.toDomain()
}

// JobFilter selects jobs for list queries. SessionID is always set: a
// client only sees its own jobs.
type JobFilter struct {
	SessionID string
	JobType   string
	Status    string
	PageSize  int
	Cursor    *JobCursor
}

// JobCursor marks the last row of the previous page.
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListJobs returns up to PageSize+1 jobs so the caller can detect
// whether more pages exist.
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]*domain.ProcessingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE session_id = $1`
	args := []interface{}{filter.SessionID}
	argIdx := 2

	if filter.JobType != "" {
		query += fmt.Sprintf(" AND job_type = $%d", argIdx)
		args = append(args, filter.JobType)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, job_id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*domain.ProcessingJob, 0, len(rows))
	for i := range rows {
		job, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// PersistCancellation writes a cancellation decided in memory back to
// the row, guarded by the status the job was loaded with. Zero rows
// affected means the worker won the race.
func (s *Storage) PersistCancellation(ctx context.Context, job *domain.ProcessingJob, fromStatus domain.JobStatus) error {
	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, completed_at = $3,
		    processing_time_ms = $4, updated_at = $5
		WHERE job_id = $6 AND status = $7
	`
	res, err := s.db.ExecContext(ctx, query,
		job.Status, job.ErrorMessage, job.CompletedAt,
		job.ProcessingTimeMs, job.UpdatedAt,
		job.JobID, fromStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobAlreadyClaimed
	}
	return nil
}

// DeleteJob removes a terminal job and its result rows. Deleting a job
// that is still pending or processing is rejected.
func (s *Storage) DeleteJob(ctx context.Context, jobID string) error {
	query := `
		DELETE FROM jobs
		WHERE job_id = $1 AND status IN ('COMPLETED', 'FAILED', 'CANCELLED')
	`
	res, err := s.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// GetBarcodeResults loads the enriched barcode rows of a job.
func (s *Storage) GetBarcodeResults(ctx context.Context, jobID string) ([]barcode.Result, error) {
	var results []barcode.Result
	query := `SELECT * FROM barcode_results WHERE job_id = $1 ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &results, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to get barcode results: %w", err)
	}
	return results, nil
}

// GetQRCodeResults loads the enriched QR rows of a job.
func (s *Storage) GetQRCodeResults(ctx context.Context, jobID string) ([]qrcode.Result, error) {
	var results []qrcode.Result
	query := `SELECT * FROM qr_code_results WHERE job_id = $1 ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &results, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to get qr code results: %w", err)
	}
	return results, nil
}

// GetOCRResult loads the per-job OCR aggregate row, nil when the job
// produced none.
func (s *Storage) GetOCRResult(ctx context.Context, jobID string) (*ocr.Result, error) {
	var result ocr.Result
	query := `SELECT * FROM ocr_results WHERE job_id = $1`
	err := s.db.GetContext(ctx, &result, query, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ocr result: %w", err)
	}
	return &result, nil
}

// GetSession loads one session record.
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
	return saveSession(ctx, s.db, sess)
}

func saveSession(ctx context.Context, e sqlx.ExtContext, sess *session.Session) error {
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
	if _, err := sqlx.NamedExecContext(ctx, e, query, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
