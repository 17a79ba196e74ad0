package middleware

import (
	"net/http"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/problems"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// problemMiddleware renders unhandled gin errors as RFC7807 problem responses.
func problemMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle if there are errors and response hasn't been written yet
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status := c.Writer.Status()
		if status == 0 || status == http.StatusOK {
			status = http.StatusInternalServerError
		}

		firstErr := c.Errors[0]
		problem := problems.New(status, firstErr.Error())
		problem.Instance = c.Request.URL.Path

		// If meta is already a Problem, use it
		if existing, ok := firstErr.Meta.(*problems.Problem); ok {
			problem = existing
			status = existing.Status
		}

		c.JSON(status, problem)
	}
}

// ProblemModule provides problem-details rendering middleware.
func ProblemModule(priority int) fx.Option {
	return fx.Provide(
		fx.Annotate(
			func() Middleware {
				return Middleware{Priority: priority, Handler: problemMiddleware()}
			},
			fx.ResultTags(`group:"gin_mw"`),
		),
	)
}
