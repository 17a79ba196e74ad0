package api

import (
	"net/http"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/core/health"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// RegisterRoutes mounts the movements routes and the health probes on the
// engine.
func RegisterRoutes(engine *gin.Engine, handler *Handler, readiness health.ReadinessChecker) {
	engine.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	engine.GET("/health/ready", func(c *gin.Context) {
		status := readiness.GetStatus()
		code := http.StatusOK
		if !status.Ready {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	departures := engine.Group("/movements/departures")
	departures.POST("", handler.createDeparture)
	departures.GET("", handler.listDepartures)
	departures.GET("/:departureId", handler.getDeparture)
	departures.GET("/:departureId/messages", handler.listMessages)
	departures.GET("/:departureId/messages/:messageId", handler.getMessage)
	departures.POST("/:departureId/messages", handler.submitCancellation)

	engine.POST("/internal/movements/departures/:departureId/messages", handler.receiveResponse)
}

// NewAPIModule provides the movements handler and mounts the routes.
func NewAPIModule() fx.Option {
	return fx.Module("movements-api",
		fx.Provide(NewHandler),
		fx.Invoke(RegisterRoutes),
	)
}
