package repository

import "errors"

var (
	// ErrDepartureAlreadyExists is returned by Insert when a departure with
	// the same id is already stored.
	ErrDepartureAlreadyExists = errors.New("departure already exists")

	// ErrDepartureNotFound is returned when no departure matches the given id.
	ErrDepartureNotFound = errors.New("departure not found")

	// ErrMessageNotFound is returned by message-scoped writes when the
	// departure exists but no message occupies the targeted ledger position.
	// Distinct from ErrDepartureNotFound so callers can tell a missing
	// movement from a bad message index.
	ErrMessageNotFound = errors.New("message not found")
)
