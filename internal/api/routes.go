package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API under /api/v1. Health and metrics routes are
// registered by infrastructure/gin.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	v1 := router.Group("/api/v1")

	v1.POST("/search", handler.Search)                   // POST /api/v1/search
	v1.POST("/aggregate", handler.Aggregate)             // POST /api/v1/aggregate
	v1.POST("/full-text-search", handler.FullTextSearch) // POST /api/v1/full-text-search
	v1.POST("/suggest", handler.Suggest)                 // POST /api/v1/suggest

	reportsGroup := v1.Group("/reports")
	reportsGroup.GET("", handler.ListReports)  // GET /api/v1/reports
	reportsGroup.GET("/:name", handler.Report) // GET /api/v1/reports/:name

	v1.DELETE("/schema/:index", handler.InvalidateSchema) // DELETE /api/v1/schema/:index
}
