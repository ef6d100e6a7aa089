package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
)

// The store interfaces below describe what the core needs from the
// persistent store.  The MySQL repositories satisfy them; tests use
// in-memory fakes.  Implementations signal failures with the sentinel
// errors of the repository package (not-found, insufficient capacity,
// status changed, lock timeout, deadlock), which the services translate
// into the taxonomy of this package.

// EventStore loads and mutates events.  UpdateStatus must be a
// conditional write: it applies the move only if the row still holds the
// expected from status.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Create(ctx context.Context, ev *model.Event) error
	Update(ctx context.Context, ev *model.Event) error
	UpdateStatus(ctx context.Context, id uint64, from, to model.EventStatus) error
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
	CountReservations(ctx context.Context, eventID uint64) (int, error)
	Delete(ctx context.Context, id uint64) error
}

// ReservationStore loads and mutates reservations.  TryReserve is the one
// atomic operation of the system: implementations must make the
// read-check-write sequence (committed seats vs. capacity, then insert)
// indivisible with respect to concurrent calls for the same event, and
// must write nothing on failure.
type ReservationStore interface {
	TryReserve(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetWithEvent(ctx context.Context, id uint64) (*model.Reservation, *model.Event, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error
	ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error)
	CommittedSeats(ctx context.Context, eventID uint64) (int, error)
}

// ReviewStore loads and upserts reviews.  Upsert must never create a
// second row for the same reservation.
type ReviewStore interface {
	GetByReservation(ctx context.Context, reservationID uint64) (*model.Review, error)
	Upsert(ctx context.Context, rev *model.Review) error
}

// Notifier dispatches a domain notification after a state transition has
// committed.  Implementations are best-effort and must not block the
// caller: a failed or slow delivery never rolls back or delays the
// transition that triggered it.
type Notifier interface {
	Notify(kind string, payload any)
}

// NopNotifier discards notifications.  Used when the broker is not
// configured and in tests.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string, any) {}
