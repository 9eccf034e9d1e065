package domain

// JobType identifies the kind of processing requested for a job.
type JobType string

const (
	JobTypeOCR     JobType = "ocr"
	JobTypeBarcode JobType = "barcode"
	JobTypeQRCode  JobType = "qrcode"
	JobTypeAll     JobType = "all"
)

// IsValid reports whether t is a known job type.
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeOCR, JobTypeBarcode, JobTypeQRCode, JobTypeAll:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether s is a terminal status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Error codes persisted on failed jobs.
const (
	ErrCodeInvalidPayload  = "INVALID_PAYLOAD"
	ErrCodeProcessingError = "PROCESSING_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeTimeout         = "PROCESSING_TIMEOUT"
)
