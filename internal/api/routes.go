package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/batches", handler.SubmitBatch)
		v1.GET("/jobs/:job_id", handler.GetJobStatus)
		v1.POST("/jobs/:job_id/cancel", handler.CancelJob)
		v1.GET("/stats", handler.GetStats)
	}
}
