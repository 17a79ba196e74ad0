package submission

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	httpclient "github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/client"
	"go.uber.org/zap"
)

// Submitter delivers outbound messages to the downstream acceptance service
// and classifies the answer. Only the classification travels back into the
// core; the transport mechanics stay here.
type Submitter interface {
	// Submit posts the message body downstream. A reachable downstream
	// always yields a Result, whatever the status code; an error means the
	// call itself failed (connectivity, timeout, cancellation).
	Submit(ctx context.Context, message model.Message) (Result, error)
}

const submissionPath = "/movements/departures"

type httpSubmitter struct {
	client *http.Client
	cfg    httpclient.ClientConfig
	log    *zap.Logger
}

// NewSubmitter creates a Submitter backed by the given HTTP client.
func NewSubmitter(client *http.Client, cfg httpclient.ClientConfig, log *zap.Logger) Submitter {
	return &httpSubmitter{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

func (s *httpSubmitter) Submit(ctx context.Context, message model.Message) (Result, error) {
	url := strings.TrimSuffix(s.cfg.BaseURL, "/") + submissionPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message.Body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("X-Message-Type", string(message.Type))

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to submit message: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		_ = resp.Body.Close()
	}()

	result := Classify(resp.StatusCode)
	if !result.Successful() {
		s.log.Warn("downstream rejected message",
			zap.String("messageType", string(message.Type)),
			zap.Int("status", result.Code),
			zap.Stringer("outcome", result),
		)
	}
	return result, nil
}
