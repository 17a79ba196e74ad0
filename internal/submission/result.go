package submission

import (
	"fmt"
	"net/http"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
)

// Outcome is the closed set of submission result classifications.
type Outcome int

const (
	// Successful means the downstream service accepted the message.
	Successful Outcome = iota
	// DownstreamBadGateway means the downstream service answered 502.
	DownstreamBadGateway
	// DownstreamInternalServerError means the downstream service answered 500.
	DownstreamInternalServerError
	// UnexpectedHTTPResponse covers every other status code; the literal code
	// is kept for diagnostics.
	UnexpectedHTTPResponse
)

// Result classifies a downstream response status code. It is the sole input
// callers use to decide the next message status; the specific outcome is
// retained for logging and retry decisions.
type Result struct {
	Outcome Outcome
	Code    int
}

// Classify maps a downstream response status code to a Result. It is total
// and deterministic.
func Classify(code int) Result {
	switch code {
	case http.StatusAccepted:
		return Result{Outcome: Successful, Code: code}
	case http.StatusBadGateway:
		return Result{Outcome: DownstreamBadGateway, Code: code}
	case http.StatusInternalServerError:
		return Result{Outcome: DownstreamInternalServerError, Code: code}
	default:
		return Result{Outcome: UnexpectedHTTPResponse, Code: code}
	}
}

// Successful reports whether the downstream accepted the message.
func (r Result) Successful() bool {
	return r.Outcome == Successful
}

// MessageStatus is the message status the classification implies.
func (r Result) MessageStatus() model.MessageStatus {
	if r.Successful() {
		return model.MessageStatusSubmissionSucceeded
	}
	return model.MessageStatusSubmissionFailed
}

func (r Result) String() string {
	switch r.Outcome {
	case Successful:
		return "Successful"
	case DownstreamBadGateway:
		return "DownstreamBadGateway"
	case DownstreamInternalServerError:
		return "DownstreamInternalServerError"
	default:
		return fmt.Sprintf("UnexpectedHTTPResponse(%d)", r.Code)
	}
}
