package enrolment

import (
	"net/http"
	"strings"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/middleware"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/problems"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// enrolmentMiddleware extracts the verified trader identity from request
// headers and stores it in the request context. Requests without an identity
// are rejected with 401. Health probes and internal routes are exempt; the
// internal surface is reachable only from inside the trust boundary.
func enrolmentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if isExemptPath(path) {
			c.Next()
			return
		}

		eori := c.GetHeader(HeaderEORINumber)
		if eori == "" {
			problem := problems.New(http.StatusUnauthorized, "missing enrolment")
			problem.Instance = path
			c.Status(http.StatusUnauthorized)
			_ = c.Error(ErrMissingEnrolment).SetMeta(problem)
			c.Abort()
			return
		}

		e := &Enrolment{
			EORINumber: eori,
			Channel:    c.GetHeader(HeaderChannel),
		}
		c.Request = c.Request.WithContext(ContextWithEnrolment(c.Request.Context(), e))
		c.Next()
	}
}

func isExemptPath(path string) bool {
	if path == "/health/live" || path == "/health/ready" {
		return true
	}
	return strings.HasPrefix(path, "/internal/")
}

// Module provides the enrolment extraction middleware.
func Module(priority int) fx.Option {
	return fx.Provide(
		fx.Annotate(
			func() middleware.Middleware {
				return middleware.Middleware{Priority: priority, Handler: enrolmentMiddleware()}
			},
			fx.ResultTags(`group:"gin_mw"`),
		),
	)
}
