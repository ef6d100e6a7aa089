// Package service implements the reservation core: capacity accounting,
// the event and reservation lifecycles and the review gate.  It consumes
// store interfaces satisfied by the MySQL repositories and exposes typed
// failures so the transport layer can map every outcome to a stable
// user-visible category.
package service

import "errors"

// The error taxonomy of the core.  Services wrap these sentinels with
// fmt.Errorf("%w: ...") to add context; callers match with errors.Is.
var (
	// ErrBadRequest marks malformed input: invalid seat count, invalid
	// rating, missing required event fields.
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidTransition is returned when a status machine rejects the
	// requested move.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrBusinessRule is returned when a domain rule is violated: event not
	// reservable, cancellation window closed, event has reservations on
	// delete, review not yet eligible.
	ErrBusinessRule = errors.New("business rule violation")

	// ErrInsufficientCapacity is returned when the ledger check failed.
	// Presented to users as retryable.
	ErrInsufficientCapacity = errors.New("insufficient capacity")

	// ErrConflict is returned when a concurrent-write retry budget was
	// exhausted.  Presented to users as retryable.
	ErrConflict = errors.New("conflict")

	// ErrTimeout is returned when atomicity could not be obtained in time.
	// Distinct from ErrInsufficientCapacity so callers can retry.
	ErrTimeout = errors.New("timeout")

	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is neither the holder nor
	// the organizer of the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrCapacityCorrupted signals that available seats were observed
	// negative, which can only happen after a prior control failure.
	ErrCapacityCorrupted = errors.New("capacity accounting corrupted")
)
