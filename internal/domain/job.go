package domain

import (
	"time"
)

// ProcessingJob is one unit of submitted processing work with a tracked
// lifecycle. All lifecycle mutations go through the transition methods below;
// persistence is the caller's responsibility and no method performs I/O.
type ProcessingJob struct {
	JobID   string    `db:"job_id" json:"job_id"`
	JobType JobType   `db:"job_type" json:"job_type"`
	Status  JobStatus `db:"status" json:"status"`

	// Input metadata
	InputFilename  string `db:"input_filename" json:"input_filename,omitempty"`
	InputFormat    string `db:"input_format" json:"input_format,omitempty"`
	InputSizeBytes int64  `db:"input_size_bytes" json:"input_size_bytes,omitempty"`
	InputHash      string `db:"input_hash" json:"input_hash,omitempty"`

	// Raw decoder output submitted with the job, JSON-encoded.
	Payload string `db:"payload" json:"-"`

	Params  *ProcessingParams `db:"-" json:"processing_params,omitempty"`
	Results *JobResults       `db:"-" json:"results,omitempty"`

	ResultsSummary string `db:"results_summary" json:"results_summary,omitempty"`

	ErrorCode    string            `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage string            `db:"error_message" json:"error_message,omitempty"`
	ErrorDetails map[string]string `db:"-" json:"error_details,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	QueueTimeMs      *int64 `db:"queue_time_ms" json:"queue_time_ms,omitempty"`
	ProcessingTimeMs *int64 `db:"processing_time_ms" json:"processing_time_ms,omitempty"`

	// Client context
	ClientIP  string `db:"client_ip" json:"-"`
	UserAgent string `db:"user_agent" json:"-"`
	SessionID string `db:"session_id" json:"-"`
}

// NewJob creates a PENDING job owned by the given session.
func NewJob(jobID string, jobType JobType, sessionID string) *ProcessingJob {
	now := time.Now().UTC()
	return &ProcessingJob{
		JobID:     jobID,
		JobType:   jobType,
		Status:    JobStatusPending,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Lifecycle actions validated against the transition table.
const (
	actionStart    = "start"
	actionComplete = "complete"
	actionFail     = "fail"
	actionCancel   = "cancel"
)

// transitions is the single source of truth for legal lifecycle moves.
// Anything not listed here is rejected with InvalidTransitionError.
var transitions = map[JobStatus]map[string]JobStatus{
	JobStatusPending: {
		actionStart:  JobStatusProcessing,
		actionFail:   JobStatusFailed, // pre-processing validation failure
		actionCancel: JobStatusCancelled,
	},
	JobStatusProcessing: {
		actionComplete: JobStatusCompleted,
		actionFail:     JobStatusFailed,
		actionCancel:   JobStatusCancelled,
	},
}

func (j *ProcessingJob) transition(action string) error {
	next, ok := transitions[j.Status][action]
	if !ok {
		return &InvalidTransitionError{JobID: j.JobID, From: j.Status, Action: action}
	}
	j.Status = next
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// StartProcessing moves the job from PENDING to PROCESSING and records queue
// time. Calling it twice, or from any other status, is rejected.
func (j *ProcessingJob) StartProcessing() error {
	if err := j.transition(actionStart); err != nil {
		return err
	}
	now := time.Now().UTC()
	j.StartedAt = &now
	queueMs := now.Sub(j.CreatedAt).Milliseconds()
	if queueMs < 0 {
		queueMs = 0
	}
	j.QueueTimeMs = &queueMs
	return nil
}

// CompleteSuccessfully moves the job from PROCESSING to COMPLETED, stores the
// results payload and derives the human-readable summary.
func (j *ProcessingJob) CompleteSuccessfully(results *JobResults, processingTimeMs int64) error {
	if err := j.transition(actionComplete); err != nil {
		return err
	}
	now := time.Now().UTC()
	j.CompletedAt = &now
	j.Results = results
	j.ProcessingTimeMs = &processingTimeMs
	j.ResultsSummary = summarizeResults(j.JobType, results)
	return nil
}

// FailWithError moves the job to FAILED and records the structured error.
// Legal from PROCESSING and from PENDING (pre-processing validation failure).
func (j *ProcessingJob) FailWithError(code, message string, details map[string]string) error {
	if err := j.transition(actionFail); err != nil {
		return err
	}
	now := time.Now().UTC()
	j.CompletedAt = &now
	j.ErrorCode = code
	j.ErrorMessage = message
	j.ErrorDetails = details
	if j.StartedAt != nil {
		ms := now.Sub(*j.StartedAt).Milliseconds()
		j.ProcessingTimeMs = &ms
	}
	return nil
}

// Cancel moves a non-terminal job to CANCELLED, storing the reason as the
// error message. Cancelling an already-terminal job is rejected.
func (j *ProcessingJob) Cancel(reason string) error {
	if err := j.transition(actionCancel); err != nil {
		return err
	}
	now := time.Now().UTC()
	j.CompletedAt = &now
	if reason == "" {
		reason = "job cancelled"
	}
	j.ErrorMessage = reason
	if j.StartedAt != nil {
		ms := now.Sub(*j.StartedAt).Milliseconds()
		j.ProcessingTimeMs = &ms
	}
	return nil
}

// IsFinished reports whether the job reached a terminal status.
func (j *ProcessingJob) IsFinished() bool {
	return j.Status.IsTerminal()
}

// IsSuccessful reports whether the job completed without error.
func (j *ProcessingJob) IsSuccessful() bool {
	return j.Status == JobStatusCompleted
}

// DurationSeconds returns the processing time in seconds, or 0 when unset.
func (j *ProcessingJob) DurationSeconds() float64 {
	if j.ProcessingTimeMs == nil {
		return 0
	}
	return float64(*j.ProcessingTimeMs) / 1000.0
}
