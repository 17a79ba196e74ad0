package submission

import (
	httpclient "github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/client"
	"go.uber.org/fx"
)

// NewSubmissionModule provides the downstream submitter with its own private
// HTTP client configured under "clients.eis".
func NewSubmissionModule() fx.Option {
	return fx.Module("submission",
		fx.Provide(
			fx.Private,
			httpclient.ProvideHTTPClient("eis"),
		),
		fx.Provide(NewSubmitter),
	)
}
