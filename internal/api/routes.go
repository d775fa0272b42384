package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats", handler.GetStats)    // GET /api/v1/stats
		v1.GET("/emails", handler.ListEmails) // GET /api/v1/emails?start_date=&end_date=

		v1.POST("/retrieve/run", handler.RunRetrieve) // POST /api/v1/retrieve/run
		v1.POST("/extract/run", handler.RunExtract)   // POST /api/v1/extract/run
	}
}
