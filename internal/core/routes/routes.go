package routes

import (
	"time"

	"stockroom/internal/core/container"
	"stockroom/internal/middleware"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes wires every handler behind the tenant-resolution middleware;
// only the health endpoint stays open.
func RegisterRoutes(router *gin.Engine, c *container.Container, log *zap.Logger) {
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	router.GET("/health", middleware.HealthCheckMiddleware())

	api := router.Group("/api/v1")
	api.Use(security.TenantMiddleware())

	c.LedgerHandler.RegisterRoutes(api)
	c.TransferHandler.RegisterRoutes(api)
	c.BatchHandler.RegisterRoutes(api)
	c.SerialHandler.RegisterRoutes(api)
	c.StockTakeHandler.RegisterRoutes(api)
	c.ProductHandler.RegisterRoutes(api)
	c.LocationHandler.RegisterRoutes(api)
}
