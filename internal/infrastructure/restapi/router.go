package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires the snapshot endpoints, health check and Prometheus
// metrics into a Gin engine with the standard Logger and Recovery middleware.
func SetupRouter(snapshotHandler *SnapshotHandler) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/snapshot/:address", snapshotHandler.GetSnapshotHandler)
	}

	router.GET("/health", snapshotHandler.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
