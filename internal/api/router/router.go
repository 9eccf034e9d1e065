package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cuongbtq/mediascan-be/internal/api/handler"
	"github.com/cuongbtq/mediascan-be/internal/ratelimit"
)

// SetupRouter configures the Gin router with all routes and middleware.
func SetupRouter(deps *handler.Dependencies, limiter *ratelimit.Limiter) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(ClientContextMiddleware())
	r.Use(LoggerMiddleware(deps.Logger, deps.Metrics))
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		if !deps.RabbitClient.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "rabbitmq connection lost",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "mediascan-api",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jobHandler := handler.NewJobHandler(deps)

	v1 := r.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter, deps.Logger, deps.Metrics))
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.SubmitJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:job_id", jobHandler.GetJob)
			jobs.POST("/:job_id/cancel", jobHandler.CancelJob)
			jobs.DELETE("/:job_id", jobHandler.DeleteJob)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.GET("/me", jobHandler.GetSessionUsage)
			sessions.GET("/:session_id/usage", jobHandler.GetSessionUsage)
			sessions.POST("/:session_id/block", jobHandler.BlockSession)
			sessions.POST("/:session_id/unblock", jobHandler.UnblockSession)
		}

		v1.GET("/analytics/stats", jobHandler.GetAnalytics)
	}

	return r
}
