package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/repository"
)

// reserveAttempts bounds the deadlock retry loop inside TryReserve.  A
// deadlock victim can safely retry because the store wrote nothing; once
// the budget is exhausted the failure surfaces as ErrConflict.
const reserveAttempts = 3

// CapacityLedger is the single source of truth for seat accounting on an
// event.  Committed seats are always derived from the reservations
// themselves — there is no separate counter to decrement, so a cancelled
// reservation releases its seats simply by no longer being counted.
type CapacityLedger struct {
	events       EventStore
	reservations ReservationStore
}

// NewCapacityLedger returns a ledger over the given stores.
func NewCapacityLedger(events EventStore, reservations ReservationStore) *CapacityLedger {
	return &CapacityLedger{events: events, reservations: reservations}
}

// CommittedSeats returns the sum of seat counts over PENDING and
// CONFIRMED reservations of the event.
func (l *CapacityLedger) CommittedSeats(ctx context.Context, eventID uint64) (int, error) {
	return l.reservations.CommittedSeats(ctx, eventID)
}

// AvailableSeats returns capacity minus committed seats.  The value is a
// display snapshot and may be stale the moment it is returned; only
// TryReserve is authoritative.  A negative result signals a prior control
// failure and is reported as ErrCapacityCorrupted.
func (l *CapacityLedger) AvailableSeats(ctx context.Context, eventID uint64) (int, error) {
	ev, err := l.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return 0, fmt.Errorf("%w: event %d", ErrNotFound, eventID)
		}
		return 0, err
	}
	committed, err := l.reservations.CommittedSeats(ctx, eventID)
	if err != nil {
		return 0, err
	}
	available := ev.Capacity - committed
	if available < 0 {
		return 0, fmt.Errorf("%w: event %d committed %d of %d",
			ErrCapacityCorrupted, eventID, committed, ev.Capacity)
	}
	return available, nil
}

// TryReserve commits res.SeatCount seats against res.EventID via the
// store's atomic primitive and translates store failures into the core
// taxonomy.  Deadlocks are retried up to reserveAttempts times; a lock
// wait timeout surfaces as ErrTimeout so the caller can retry, never as a
// silent success.  repository.ErrCodeTaken is passed through untranslated
// because only the caller can regenerate the code.
func (l *CapacityLedger) TryReserve(ctx context.Context, res *model.Reservation) error {
	var err error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		err = l.reservations.TryReserve(ctx, res)
		if !errors.Is(err, repository.ErrDeadlock) {
			break
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInsufficientCapacity):
		return fmt.Errorf("%w: event %d", ErrInsufficientCapacity, res.EventID)
	case errors.Is(err, repository.ErrEventNotReservable):
		return fmt.Errorf("%w: event not open for reservations", ErrBusinessRule)
	case errors.Is(err, repository.ErrEventNotFound):
		return fmt.Errorf("%w: event %d", ErrNotFound, res.EventID)
	case errors.Is(err, repository.ErrLockTimeout):
		return fmt.Errorf("%w: could not lock event %d", ErrTimeout, res.EventID)
	case errors.Is(err, repository.ErrDeadlock):
		return fmt.Errorf("%w: reserve retries exhausted", ErrConflict)
	case errors.Is(err, repository.ErrCodeTaken):
		return err
	}
	return err
}
