package session

import (
	"time"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// Session is the per-client accounting record. One session groups all
// jobs a client submits within the same hour window.
type Session struct {
	SessionID string `db:"session_id" json:"session_id"`
	ClientIP  string `db:"client_ip" json:"client_ip"`
	UserAgent string `db:"user_agent" json:"user_agent"`

	DeviceType string `db:"device_type" json:"device_type"`
	Browser    string `db:"browser" json:"browser"`
	OS         string `db:"os" json:"os"`

	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
	LastJobDate  string    `db:"last_job_date" json:"last_job_date"` // YYYY-MM-DD

	TotalRequests int `db:"total_requests" json:"total_requests"`
	RequestsToday int `db:"requests_today" json:"requests_today"`

	TotalJobs      int `db:"total_jobs" json:"total_jobs"`
	OCRJobs        int `db:"ocr_jobs" json:"ocr_jobs"`
	BarcodeJobs    int `db:"barcode_jobs" json:"barcode_jobs"`
	QRCodeJobs     int `db:"qrcode_jobs" json:"qrcode_jobs"`
	CombinedJobs   int `db:"combined_jobs" json:"combined_jobs"`
	SuccessfulJobs int `db:"successful_jobs" json:"successful_jobs"`
	FailedJobs     int `db:"failed_jobs" json:"failed_jobs"`
	JobsToday      int `db:"jobs_today" json:"jobs_today"`

	DailyLimit  int `db:"daily_limit" json:"daily_limit"`
	MinuteLimit int `db:"minute_limit" json:"minute_limit"`

	AvgProcessingTimeMs float64 `db:"avg_processing_time_ms" json:"avg_processing_time_ms"`
	AvgFileSizeBytes    float64 `db:"avg_file_size_bytes" json:"avg_file_size_bytes"`

	Blocked      bool       `db:"blocked" json:"blocked"`
	BlockedUntil *time.Time `db:"blocked_until" json:"blocked_until,omitempty"`
	BlockReason  string     `db:"block_reason" json:"block_reason,omitempty"`
}

// New creates a session for a client, parsing device hints out of the
// user agent up front. The limits are pinned on the record so a session
// keeps the quota it was created under.
func New(sessionID, clientIP, userAgent string, dailyLimit, minuteLimit int) *Session {
	now := time.Now().UTC()
	device, browser, os := ParseUserAgent(userAgent)
	return &Session{
		SessionID:    sessionID,
		ClientIP:     clientIP,
		UserAgent:    userAgent,
		DeviceType:   device,
		Browser:      browser,
		OS:           os,
		CreatedAt:    now,
		LastActivity: now,
		LastJobDate:  now.Format(time.DateOnly),
		DailyLimit:   dailyLimit,
		MinuteLimit:  minuteLimit,
	}
}

// UpdateActivity folds one finished job into the session counters. The
// daily counter resets when the calendar day changed since the last job.
func (s *Session) UpdateActivity(jobType domain.JobType, success bool, processingTimeMs float64, fileSizeBytes int64) {
	now := time.Now().UTC()
	s.LastActivity = now

	today := now.Format(time.DateOnly)
	if s.LastJobDate != today {
		s.JobsToday = 0
		s.RequestsToday = 0
		s.LastJobDate = today
	}

	s.TotalRequests++
	s.RequestsToday++
	s.TotalJobs++
	s.JobsToday++
	switch jobType {
	case domain.JobTypeOCR:
		s.OCRJobs++
	case domain.JobTypeBarcode:
		s.BarcodeJobs++
	case domain.JobTypeQRCode:
		s.QRCodeJobs++
	case domain.JobTypeAll:
		s.CombinedJobs++
	}

	if success {
		s.SuccessfulJobs++
	} else {
		s.FailedJobs++
	}

	n := float64(s.SuccessfulJobs + s.FailedJobs)
	if processingTimeMs > 0 {
		s.AvgProcessingTimeMs = (s.AvgProcessingTimeMs*(n-1) + processingTimeMs) / n
	}
	if fileSizeBytes > 0 {
		s.AvgFileSizeBytes = (s.AvgFileSizeBytes*(n-1) + float64(fileSizeBytes)) / n
	}
}

// SuccessRate is the fraction of finished jobs that completed, 0 for a
// fresh session.
func (s *Session) SuccessRate() float64 {
	finished := s.SuccessfulJobs + s.FailedJobs
	if finished == 0 {
		return 0
	}
	return float64(s.SuccessfulJobs) / float64(finished)
}

// RateLimitDecision is the outcome of a per-session admission check.
type RateLimitDecision struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Remaining int    `json:"remaining"`
}

// CheckRateLimits enforces per-session admission: an active block wins,
// then the session's own daily quota is checked.
func (s *Session) CheckRateLimits() RateLimitDecision {
	if s.Blocked {
		if s.BlockedUntil == nil || time.Now().UTC().Before(*s.BlockedUntil) {
			return RateLimitDecision{Allowed: false, Reason: "session_blocked"}
		}
		s.Unblock()
	}

	today := time.Now().UTC().Format(time.DateOnly)
	jobsToday := s.JobsToday
	if s.LastJobDate != today {
		jobsToday = 0
	}
	if s.DailyLimit > 0 && jobsToday >= s.DailyLimit {
		return RateLimitDecision{Allowed: false, Reason: "daily_limit_exceeded"}
	}

	remaining := s.DailyLimit - jobsToday
	if s.DailyLimit <= 0 {
		remaining = -1 // unlimited
	}
	return RateLimitDecision{Allowed: true, Remaining: remaining}
}

// Block suspends the session. A zero duration blocks indefinitely until
// an operator unblocks it.
func (s *Session) Block(reason string, duration time.Duration) {
	s.Blocked = true
	s.BlockReason = reason
	if duration > 0 {
		until := time.Now().UTC().Add(duration)
		s.BlockedUntil = &until
	} else {
		s.BlockedUntil = nil
	}
}

// Unblock lifts a suspension.
func (s *Session) Unblock() {
	s.Blocked = false
	s.BlockedUntil = nil
	s.BlockReason = ""
}

// UsageSummary is the client-facing view of session accounting.
type UsageSummary struct {
	SessionID           string         `json:"session_id"`
	DeviceType          string         `json:"device_type"`
	Browser             string         `json:"browser"`
	OS                  string         `json:"os"`
	TotalRequests       int            `json:"total_requests"`
	RequestsToday       int            `json:"requests_today"`
	TotalJobs           int            `json:"total_jobs"`
	JobsToday           int            `json:"jobs_today"`
	DailyLimit          int            `json:"daily_limit"`
	MinuteLimit         int            `json:"minute_limit"`
	JobsByType          map[string]int `json:"jobs_by_type"`
	SuccessRate         float64        `json:"success_rate"`
	AvgProcessingTimeMs float64        `json:"avg_processing_time_ms"`
	AvgFileSizeBytes    float64        `json:"avg_file_size_bytes"`
	Blocked             bool           `json:"blocked"`
	CreatedAt           time.Time      `json:"created_at"`
	LastActivity        time.Time      `json:"last_activity"`
}

// Summary snapshots the session for the usage endpoint.
func (s *Session) Summary() UsageSummary {
	return UsageSummary{
		SessionID:     s.SessionID,
		DeviceType:    s.DeviceType,
		Browser:       s.Browser,
		OS:            s.OS,
		TotalRequests: s.TotalRequests,
		RequestsToday: s.RequestsToday,
		TotalJobs:     s.TotalJobs,
		JobsToday:     s.JobsToday,
		DailyLimit:    s.DailyLimit,
		MinuteLimit:   s.MinuteLimit,
		JobsByType: map[string]int{
			string(domain.JobTypeOCR):     s.OCRJobs,
			string(domain.JobTypeBarcode): s.BarcodeJobs,
			string(domain.JobTypeQRCode):  s.QRCodeJobs,
			string(domain.JobTypeAll):     s.CombinedJobs,
		},
		SuccessRate:         s.SuccessRate(),
		AvgProcessingTimeMs: s.AvgProcessingTimeMs,
		AvgFileSizeBytes:    s.AvgFileSizeBytes,
		Blocked:             s.Blocked,
		CreatedAt:           s.CreatedAt,
		LastActivity:        s.LastActivity,
	}
}
