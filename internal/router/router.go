package router

import (
	"github.com/gin-gonic/gin"

	"loaddocs/internal/handler"
	"loaddocs/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	mediaH *handler.MediaHandler,
	driverH *handler.DriverHandler,
	loadH *handler.LoadHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Document submission and processing
	media := v1.Group("/media")
	media.POST("", mediaH.Submit)
	media.GET("/:id/status", mediaH.Status)
	media.POST("/:id/process", mediaH.Process)

	// Drivers
	drivers := v1.Group("/drivers")
	drivers.POST("", driverH.Create)
	drivers.GET("/:id", driverH.GetByID)
	drivers.GET("/:id/verification", driverH.GetVerification)
	drivers.GET("/:id/documents", driverH.ListDocuments)

	// Loads
	loads := v1.Group("/loads")
	loads.POST("", loadH.Create)
	loads.GET("/:id", loadH.GetByID)
	loads.GET("/:id/verification", loadH.GetVerification)

	return r
}
