package router

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/mediascan-be/internal/metrics"
	"github.com/cuongbtq/mediascan-be/internal/ratelimit"
	"github.com/cuongbtq/mediascan-be/internal/session"
)

// LoggerMiddleware logs HTTP requests with slog and feeds the request
// counter when metrics are wired.
func LoggerMiddleware(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.Info("http request",
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.GetString("client_ip")),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		if m != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		}

		for _, e := range c.Errors {
			logger.Error("request error", slog.String("error", e.Error()))
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// maxSessionIDLen matches the sessions.session_id column width.
const maxSessionIDLen = 128

// ClientContextMiddleware resolves the real client IP behind proxies and
// the session id, storing both on the context. Clients may pin a session
// with the X-Session-ID header; an empty or oversized header falls back
// to the id derived from the IP, user agent and hour bucket.
func ClientContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		c.Set("client_ip", ip)

		sessionID := strings.TrimSpace(c.GetHeader("X-Session-ID"))
		if sessionID == "" || len(sessionID) > maxSessionIDLen {
			sessionID = session.DeriveID(ip, c.Request.UserAgent(), time.Now())
		}
		c.Set("session_id", sessionID)
		c.Next()
	}
}

// RateLimitMiddleware rejects requests over the sliding-window budget
// with 429 and a Retry-After header.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.GetString("client_ip")

		decision := limiter.Admit(ip)
		if !decision.Allowed {
			if m != nil {
				m.AdmissionDenied.WithLabelValues(decision.Reason).Inc()
			}
			logger.Warn("request rate limited",
				slog.String("ip", ip),
				slog.String("reason", decision.Reason),
				slog.Int("current", decision.Current),
				slog.Int("limit", decision.Limit),
			)

			retryAfter := int(decision.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"reason":      decision.Reason,
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// clientIP prefers proxy headers over the socket peer, taking the first
// hop of X-Forwarded-For.
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := c.GetHeader("X-Real-IP"); real != "" {
		return real
	}
	return c.ClientIP()
}
