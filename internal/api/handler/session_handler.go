package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/mediascan-be/internal/api/dto"
	"github.com/cuongbtq/mediascan-be/internal/domain"
)

// GetSessionUsage handles GET /api/v1/sessions/me and
// GET /api/v1/sessions/:session_id/usage. A session with no jobs yet
// gets an empty summary rather than a 404.
func (h *JobHandler) GetSessionUsage(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		sessionID = c.GetString("session_id")
	}

	sess, err := h.storage.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"total_jobs": 0,
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to get session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}

	summary := sess.Summary()
	if summary.DailyLimit > 0 {
		remaining := summary.DailyLimit - summary.JobsToday
		if remaining < 0 {
			remaining = 0
		}
		c.JSON(http.StatusOK, gin.H{
			"usage":           summary,
			"daily_limit":     summary.DailyLimit,
			"daily_remaining": remaining,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": summary})
}

// BlockSession handles POST /api/v1/sessions/:session_id/block.
func (h *JobHandler) BlockSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req dto.BlockSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}

	sess, err := h.storage.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}

	sess.Block(req.Reason, time.Duration(req.DurationMinutes)*time.Minute)
	if err := h.storage.SaveSession(c.Request.Context(), sess); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	h.logger.Warn("session blocked",
		slog.String("session_id", sessionID),
		slog.String("reason", req.Reason),
		slog.Int("duration_minutes", req.DurationMinutes),
	)
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"blocked":    true,
	})
}

// UnblockSession handles POST /api/v1/sessions/:session_id/unblock.
func (h *JobHandler) UnblockSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	sess, err := h.storage.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}

	sess.Unblock()
	if err := h.storage.SaveSession(c.Request.Context(), sess); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	h.logger.Info("session unblocked", slog.String("session_id", sessionID))
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"blocked":    false,
	})
}

// GetAnalytics handles GET /api/v1/analytics/stats.
func (h *JobHandler) GetAnalytics(c *gin.Context) {
	windowDays := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		windowDays = parsed
	}

	stats, err := h.analytics.Collect(c.Request.Context(), windowDays)
	if err != nil {
		h.logger.Error("failed to collect analytics", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect analytics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
