package middleware

import (
	"time"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/core/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// loggerMiddleware logs each request with latency and status. Health probe
// endpoints are skipped to keep the log quiet.
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if isHealthPath(path) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		fields := append(requestFields(c),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
		logger.Get(c).Debug("Incoming request", fields...)
	}
}

// LoggerModule provides request logging middleware.
func LoggerModule(priority int) fx.Option {
	return fx.Provide(
		fx.Annotate(
			func() Middleware {
				return Middleware{Priority: priority, Handler: loggerMiddleware()}
			},
			fx.ResultTags(`group:"gin_mw"`),
		),
	)
}
