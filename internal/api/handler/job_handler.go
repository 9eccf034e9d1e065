package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/mediascan-be/internal/api/dto"
	"github.com/cuongbtq/mediascan-be/internal/api/storage"
	"github.com/cuongbtq/mediascan-be/internal/domain"
	"github.com/cuongbtq/mediascan-be/internal/session"
)

// queueMessage is the body published to the scan jobs queue.
type queueMessage struct {
	JobID   string `json:"job_id"`
	JobType string `json:"job_type"`
}

// SubmitJob handles POST /api/v1/jobs. The job is persisted PENDING and
// its id is published for a worker to pick up.
func (h *JobHandler) SubmitJob(c *gin.Context) {
	var req dto.SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	jobType := domain.JobType(req.JobType)
	if !jobType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown job_type"})
		return
	}

	switch jobType {
	case domain.JobTypeOCR:
		if len(req.TextBlocks) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text_blocks are required for ocr jobs"})
			return
		}
	case domain.JobTypeBarcode, domain.JobTypeQRCode:
		if len(req.Symbols) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "symbols are required for " + req.JobType + " jobs"})
			return
		}
	case domain.JobTypeAll:
		if len(req.Symbols) == 0 && len(req.TextBlocks) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "decoder output is required"})
			return
		}
	}

	sessionID := c.GetString("session_id")

	sess, err := h.storage.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		sess = session.New(sessionID, c.GetString("client_ip"), c.Request.UserAgent(),
			h.limits.SessionDailyJobs, h.limits.RequestsPerMinute)
	} else if err != nil {
		h.logger.Error("failed to get session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}

	decision := sess.CheckRateLimits()
	if !decision.Allowed {
		if h.metrics != nil {
			h.metrics.AdmissionDenied.WithLabelValues(decision.Reason).Inc()
		}
		status := http.StatusTooManyRequests
		if decision.Reason == "session_blocked" {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"error":  "session not allowed to submit jobs",
			"reason": decision.Reason,
		})
		return
	}

	job := domain.NewJob(uuid.New().String(), jobType, sessionID)
	job.InputFilename = req.InputFilename
	job.InputFormat = req.InputFormat
	job.InputSizeBytes = req.InputSizeBytes
	job.InputHash = req.InputHash
	job.Params = req.Params
	job.ClientIP = c.GetString("client_ip")
	job.UserAgent = c.Request.UserAgent()

	payload, err := json.Marshal(gin.H{
		"symbols":     req.Symbols,
		"text_blocks": req.TextBlocks,
		"language":    req.Language,
	})
	if err != nil {
		h.logger.Error("failed to encode payload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode payload"})
		return
	}
	job.Payload = string(payload)

	sess.LastActivity = time.Now().UTC()
	if err := h.storage.CreateJobWithSession(c.Request.Context(), job, sess); err != nil {
		h.logger.Error("failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	msg, _ := json.Marshal(queueMessage{JobID: job.JobID, JobType: string(job.JobType)})
	if err := h.rabbitClient.Publish(c.Request.Context(), msg); err != nil {
		h.logger.Error("failed to publish job",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	if h.metrics != nil {
		h.metrics.JobsSubmitted.WithLabelValues(string(job.JobType)).Inc()
	}

	h.logger.Info("job submitted",
		slog.String("job_id", job.JobID),
		slog.String("job_type", string(job.JobType)),
		slog.String("session_id", sessionID),
	)

	c.JSON(http.StatusAccepted, dto.SubmitJobResponse{
		JobID:     job.JobID,
		Status:    string(job.Status),
		SessionID: sessionID,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

// GetJob handles GET /api/v1/jobs/:job_id. Finished jobs include their
// enriched result rows.
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id must be a valid UUID"})
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}

	resp := dto.JobDetailResponse{Job: job}
	if job.IsSuccessful() {
		ctx := c.Request.Context()
		switch job.JobType {
		case domain.JobTypeBarcode:
			resp.BarcodeResults, err = h.storage.GetBarcodeResults(ctx, jobID)
		case domain.JobTypeQRCode:
			resp.QRCodeResults, err = h.storage.GetQRCodeResults(ctx, jobID)
		case domain.JobTypeOCR:
			resp.OCRResult, err = h.storage.GetOCRResult(ctx, jobID)
		case domain.JobTypeAll:
			if resp.BarcodeResults, err = h.storage.GetBarcodeResults(ctx, jobID); err == nil {
				if resp.QRCodeResults, err = h.storage.GetQRCodeResults(ctx, jobID); err == nil {
					resp.OCRResult, err = h.storage.GetOCRResult(ctx, jobID)
				}
			}
		}
		if err != nil {
			h.logger.Error("failed to load job results",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job results"})
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListJobs handles GET /api/v1/jobs, scoped to the caller's session.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
		return
	}

	filter := storage.JobFilter{
		SessionID: c.GetString("session_id"),
		JobType:   req.JobType,
		Status:    req.Status,
		PageSize:  req.PageSize,
		Cursor:    cursor,
	}

	jobs, err := h.storage.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	page := make([]dto.JobDTO, len(jobs))
	for i, job := range jobs {
		page[i] = dto.JobDTO{
			JobID:          job.JobID,
			JobType:        string(job.JobType),
			Status:         string(job.Status),
			InputFilename:  job.InputFilename,
			ResultsSummary: job.ResultsSummary,
			ErrorCode:      job.ErrorCode,
			CreatedAt:      job.CreatedAt.Format(time.RFC3339),
			UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
		}
	}

	var nextCursor string
	if hasMore {
		last := jobs[len(jobs)-1]
		nextCursor = EncodeJobCursor(&storage.JobCursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.JobID,
		})
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{Jobs: page, NextCursor: nextCursor})
}

// CancelJob handles POST /api/v1/jobs/:job_id/cancel. The state machine
// decides legality; a finished job cannot be cancelled.
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id must be a valid UUID"})
		return
	}

	var req dto.CancelJobRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}

	fromStatus := job.Status
	if err := job.Cancel(req.Reason); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "job cannot be cancelled",
			"status": string(job.Status),
		})
		return
	}

	err = h.storage.PersistCancellation(c.Request.Context(), job, fromStatus)
	if errors.Is(err, domain.ErrJobAlreadyClaimed) {
		c.JSON(http.StatusConflict, gin.H{"error": "job state changed, retry"})
		return
	}
	if err != nil {
		h.logger.Error("failed to cancel job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel job"})
		return
	}

	h.logger.Info("job cancelled",
		slog.String("job_id", jobID),
		slog.String("from_status", string(fromStatus)),
	)
	c.JSON(http.StatusOK, gin.H{
		"job_id": jobID,
		"status": string(job.Status),
	})
}

// DeleteJob handles DELETE /api/v1/jobs/:job_id. Only terminal jobs can
// be deleted; result rows go with the job via FK cascade.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id must be a valid UUID"})
		return
	}

	err := h.storage.DeleteJob(c.Request.Context(), jobID)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusConflict, gin.H{"error": "job not found or not finished"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
		return
	}

	h.logger.Info("job deleted", slog.String("job_id", jobID))
	c.Status(http.StatusNoContent)
}
