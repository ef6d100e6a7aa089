// Package repository implements MySQL persistence for the reservation
// service.  This file defines sentinel error values reused across the
// repositories.  Higher layers compare against them with errors.Is to
// distinguish failure scenarios: missing rows, ownership violations,
// capacity exhaustion and the concurrency outcomes of the atomic reserve.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrEventNotFound is returned when no event exists with the requested id.
var ErrEventNotFound = errors.New("event not found")

// ErrReservationNotFound is returned when no reservation exists with the
// requested id.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrReviewNotFound is returned when a reservation has no review yet.
var ErrReviewNotFound = errors.New("review not found")

// ErrEmailExists is returned on user registration with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrEventNotReservable is returned by TryReserve when the event row,
// observed under lock, is not published or has already started.
var ErrEventNotReservable = errors.New("event not reservable")

// ErrInsufficientCapacity is returned by TryReserve when committing the
// requested seats would exceed the event capacity.  Nothing is written.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

// ErrCodeTaken is returned when the generated reservation code collided
// with an existing one.  Callers regenerate the code and retry.
var ErrCodeTaken = errors.New("reservation code already taken")

// ErrStatusChanged is returned by conditional status updates when the row
// was concurrently moved out of the expected status.  The write did not
// happen.
var ErrStatusChanged = errors.New("status changed concurrently")

// ErrLockTimeout is returned when the reserve transaction could not obtain
// the event row lock within the database lock wait timeout.
var ErrLockTimeout = errors.New("lock wait timeout")

// ErrDeadlock is returned when the database chose this transaction as a
// deadlock victim.  The operation is safe to retry.
var ErrDeadlock = errors.New("deadlock detected")

// MySQL server error numbers used to classify driver errors.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// mysqlErrNumber extracts the server error number from a driver error, or
// 0 when the error did not come from the server.
func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
