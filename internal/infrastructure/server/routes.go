package server

import (
	"github.com/gin-gonic/gin"
)

// NewRouter registers every endpoint:
//
//	GET /healthz            - liveness
//	GET /metrics            - Prometheus metrics of the latest scan
//	GET /api/scans/latest   - outcomes of the latest scan
func NewRouter(handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handlers.HandleHealth)
	router.GET("/metrics", handlers.HandleMetrics)

	api := router.Group("/api")
	api.GET("/scans/latest", handlers.HandleLatestScan)

	return router
}
