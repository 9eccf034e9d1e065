package dto

import (
	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// SubmitJobRequest is the body of POST /api/v1/jobs. Symbols and
// TextBlocks carry the raw output of the client-side decoder; the
// service enriches them, it never decodes images itself.
type SubmitJobRequest struct {
	JobType string `json:"job_type" binding:"required"`

	InputFilename  string `json:"input_filename"`
	InputFormat    string `json:"input_format"`
	InputSizeBytes int64  `json:"input_size_bytes"`
	InputHash      string `json:"input_hash"`

	Params *domain.ProcessingParams `json:"params,omitempty"`

	Symbols    []domain.DecodedSymbol `json:"symbols,omitempty"`
	TextBlocks []domain.TextBlock     `json:"text_blocks,omitempty"`
	Language   string                 `json:"language,omitempty"`
}

// SubmitJobResponse acknowledges an accepted job.
type SubmitJobResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

// ListJobsRequest holds the query parameters of GET /api/v1/jobs.
type ListJobsRequest struct {
	JobType  string `form:"job_type"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

// ListJobsResponse is a cursor-paginated job page.
type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// JobDTO is the compact job representation used in list responses.
type JobDTO struct {
	JobID          string `json:"job_id"`
	JobType        string `json:"job_type"`
	Status         string `json:"status"`
	InputFilename  string `json:"input_filename,omitempty"`
	ResultsSummary string `json:"results_summary,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// JobDetailResponse is the full job view returned by GET /api/v1/jobs/:job_id.
// The per-symbol result rows are attached for finished jobs.
type JobDetailResponse struct {
	Job            *domain.ProcessingJob `json:"job"`
	BarcodeResults any                   `json:"barcode_results,omitempty"`
	QRCodeResults  any                   `json:"qr_code_results,omitempty"`
	OCRResult      any                   `json:"ocr_result,omitempty"`
}

// CancelJobRequest optionally carries a cancellation reason.
type CancelJobRequest struct {
	Reason string `json:"reason"`
}

// BlockSessionRequest is the body of POST /api/v1/sessions/:session_id/block.
type BlockSessionRequest struct {
	Reason          string `json:"reason" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
}
