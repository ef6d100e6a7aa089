package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-reservation/internal/model"
)

func TestAvailableSeatsReflectsCommitted(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 10, 100, 72*time.Hour)
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 2, SeatCount: 3, Status: model.ReservationPending,
	})
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 3, SeatCount: 4, Status: model.ReservationConfirmed,
	})
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 4, SeatCount: 2, Status: model.ReservationCancelled,
	})

	available, err := f.ledger.AvailableSeats(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, available, "cancelled seats must not count")
}

func TestAvailableSeatsUnknownEvent(t *testing.T) {
	f := newFixture()
	_, err := f.ledger.AvailableSeats(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Committed seats exceeding capacity mean a prior control failure.  The
// ledger must report it loudly instead of clamping to zero.
func TestAvailableSeatsDetectsCorruption(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 5, 100, 72*time.Hour)
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 2, SeatCount: 4, Status: model.ReservationConfirmed,
	})
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 3, SeatCount: 4, Status: model.ReservationConfirmed,
	})

	_, err := f.ledger.AvailableSeats(context.Background(), ev.ID)
	assert.ErrorIs(t, err, ErrCapacityCorrupted)
}
