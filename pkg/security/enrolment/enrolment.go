// Package enrolment carries the upstream-verified trader identity through the
// request context. Credential verification itself happens upstream of this
// service; by the time a request reaches these handlers the enrolment headers
// are trusted.
package enrolment

import (
	"context"
	"errors"
)

// Header names populated by the upstream verification layer.
const (
	HeaderEORINumber = "X-EORI-Number"
	HeaderChannel    = "X-Channel"
)

// ErrMissingEnrolment is returned when a request carries no verified identity.
var ErrMissingEnrolment = errors.New("missing enrolment")

// Enrolment is the verified identity of the calling trader.
type Enrolment struct {
	// EORINumber identifies the trader; it is the authorization key for
	// departure ownership checks.
	EORINumber string
	// Channel is the submission origin the request arrived through.
	Channel string
}

// enrolmentKey is the context key for storing the enrolment.
type enrolmentKey struct{}

// ContextWithEnrolment returns a new context with the enrolment stored.
func ContextWithEnrolment(ctx context.Context, e *Enrolment) context.Context {
	return context.WithValue(ctx, enrolmentKey{}, e)
}

// EnrolmentFromContext retrieves the enrolment from the context.
// Returns nil if no enrolment is present.
func EnrolmentFromContext(ctx context.Context) *Enrolment {
	e, _ := ctx.Value(enrolmentKey{}).(*Enrolment)
	return e
}
