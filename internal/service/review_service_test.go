package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-reservation/internal/model"
)

// completedAttendance seeds a completed event with a confirmed reservation
// held by user 2, the happy path for reviewing.
func completedAttendance(f *fixture) (*model.Event, *model.Reservation) {
	now := time.Now().UTC()
	ev := f.store.putEvent(model.Event{
		OrganizerID: 1, Title: "Conf", Capacity: 10,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventCompleted,
	})
	res := f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 2, SeatCount: 1,
		Status: model.ReservationConfirmed,
	})
	return ev, res
}

func TestSubmitReview(t *testing.T) {
	f := newFixture()
	ev, res := completedAttendance(f)
	comment := "great talk"

	rev, err := f.reviews.Submit(context.Background(), res.ID, 2, 5, &comment)
	require.NoError(t, err)
	assert.Equal(t, res.ID, rev.ReservationID)
	assert.Equal(t, ev.ID, rev.EventID)
	assert.Equal(t, uint64(2), rev.UserID)
	assert.Equal(t, 5, rev.Rating)
}

func TestSubmitRejectsRatingOutOfRange(t *testing.T) {
	f := newFixture()
	_, res := completedAttendance(f)

	for _, rating := range []int{0, -1, 6} {
		_, err := f.reviews.Submit(context.Background(), res.ID, 2, rating, nil)
		assert.ErrorIs(t, err, ErrBadRequest, "rating %d", rating)
	}
}

func TestSubmitOverwritesExistingReview(t *testing.T) {
	f := newFixture()
	_, res := completedAttendance(f)
	ctx := context.Background()

	first, err := f.reviews.Submit(ctx, res.ID, 2, 3, nil)
	require.NoError(t, err)

	note := "changed my mind"
	second, err := f.reviews.Submit(ctx, res.ID, 2, 5, &note)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "resubmission must reuse the row")

	got, err := f.reviews.Get(ctx, res.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	require.NotNil(t, got.Comment)
	assert.Equal(t, note, *got.Comment)
	assert.Len(t, f.store.reviews, 1)
}

func TestSubmitByNonHolderFails(t *testing.T) {
	f := newFixture()
	_, res := completedAttendance(f)

	_, err := f.reviews.Submit(context.Background(), res.ID, 99, 4, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitRequiresConfirmedReservation(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	ev := f.store.putEvent(model.Event{
		OrganizerID: 1, Capacity: 10,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventCompleted,
	})
	for _, status := range []model.ReservationStatus{
		model.ReservationPending, model.ReservationCancelled,
	} {
		res := f.store.putReservation(model.Reservation{
			EventID: ev.ID, UserID: 2, SeatCount: 1, Status: status,
		})
		_, err := f.reviews.Submit(context.Background(), res.ID, 2, 4, nil)
		assert.ErrorIs(t, err, ErrBusinessRule, "status %s", status)
	}
}

func TestSubmitRequiresCompletedEvent(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 10, 100, 72*time.Hour)
	res := f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 2, SeatCount: 1,
		Status: model.ReservationConfirmed,
	})

	_, err := f.reviews.Submit(context.Background(), res.ID, 2, 4, nil)
	assert.ErrorIs(t, err, ErrBusinessRule)
}

func TestSubmitUnknownReservation(t *testing.T) {
	f := newFixture()
	_, err := f.reviews.Submit(context.Background(), 404, 2, 4, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReviewVisibleToHolderOnly(t *testing.T) {
	f := newFixture()
	_, res := completedAttendance(f)
	ctx := context.Background()

	_, err := f.reviews.Submit(ctx, res.ID, 2, 4, nil)
	require.NoError(t, err)

	_, err = f.reviews.Get(ctx, res.ID, 2)
	assert.NoError(t, err)

	_, err = f.reviews.Get(ctx, res.ID, 99)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetMissingReview(t *testing.T) {
	f := newFixture()
	_, res := completedAttendance(f)

	_, err := f.reviews.Get(context.Background(), res.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
