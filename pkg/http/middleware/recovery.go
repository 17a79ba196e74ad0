package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/core/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// recoveryMiddleware turns a handler panic into a 500 response instead of
// tearing down the connection. The stack is logged at error level.
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			fields := append(requestFields(c),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			logger.Get(c).Error("Recovered from panic", fields...)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

// RecoveryModule provides panic recovery middleware.
func RecoveryModule(priority int) fx.Option {
	return fx.Provide(
		fx.Annotate(
			func() Middleware {
				return Middleware{Priority: priority, Handler: recoveryMiddleware()}
			},
			fx.ResultTags(`group:"gin_mw"`),
		),
	)
}
