package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-reservation/internal/model"
)

func draftEvent(f *fixture, organizerID uint64, lead time.Duration) *model.Event {
	now := time.Now().UTC()
	return f.store.putEvent(model.Event{
		OrganizerID: organizerID,
		Title:       "Go Meetup",
		Category:    "tech",
		Location:    "Main Hall",
		City:        "Berlin",
		StartsAt:    now.Add(lead),
		EndsAt:      now.Add(lead + 2*time.Hour),
		Capacity:    20,
		PriceCents:  100,
		Status:      model.EventDraft,
	})
}

func TestCreateEventStartsAsDraft(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	ev, err := f.events.Create(context.Background(), &model.Event{
		OrganizerID: 1,
		Title:       "Workshop",
		Capacity:    5,
		StartsAt:    now.Add(24 * time.Hour),
		EndsAt:      now.Add(26 * time.Hour),
		// status set by the caller must be ignored
		Status: model.EventPublished,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventDraft, ev.Status)
	assert.NotZero(t, ev.ID)
}

func TestCreateEventRejectsBadBounds(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	_, err := f.events.Create(context.Background(), &model.Event{
		OrganizerID: 1, Capacity: 0,
		StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = f.events.Create(context.Background(), &model.Event{
		OrganizerID: 1, Capacity: 5,
		StartsAt: now.Add(2 * time.Hour), EndsAt: now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestPublishValidatesCompleteness(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	ev := f.store.putEvent(model.Event{
		OrganizerID: 1,
		Title:       "  ",
		Capacity:    5,
		StartsAt:    now.Add(24 * time.Hour),
		EndsAt:      now.Add(26 * time.Hour),
		Status:      model.EventDraft,
	})

	_, err := f.events.Publish(context.Background(), ev.ID, 1)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, model.EventDraft, f.store.eventStatus(ev.ID))
}

func TestPublishRejectsPastStart(t *testing.T) {
	f := newFixture()
	ev := draftEvent(f, 1, -time.Hour)

	_, err := f.events.Publish(context.Background(), ev.ID, 1)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestPublishDraft(t *testing.T) {
	f := newFixture()
	ev := draftEvent(f, 1, 72*time.Hour)

	published, err := f.events.Publish(context.Background(), ev.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.EventPublished, published.Status)
}

func TestPublishTwiceFails(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 10, 100, 72*time.Hour)

	_, err := f.events.Publish(context.Background(), ev.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPublishByNonOwnerFails(t *testing.T) {
	f := newFixture()
	ev := draftEvent(f, 1, 72*time.Hour)

	_, err := f.events.Publish(context.Background(), ev.ID, 99)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateKeepsCapacityAboveCommitted(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 20, 100, 72*time.Hour)
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 2, SeatCount: 8, Status: model.ReservationConfirmed,
	})

	ev.Capacity = 5
	_, err := f.events.Update(context.Background(), 1, ev)
	assert.ErrorIs(t, err, ErrBusinessRule)

	ev.Capacity = 8
	_, err = f.events.Update(context.Background(), 1, ev)
	assert.NoError(t, err, "capacity equal to committed seats is allowed")
}

func TestUpdateTerminalEventFails(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	ev := f.store.putEvent(model.Event{
		OrganizerID: 1, Title: "Old", Capacity: 5,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventCompleted,
	})

	ev.Title = "New"
	_, err := f.events.Update(context.Background(), 1, ev)
	assert.ErrorIs(t, err, ErrBusinessRule)
}

func TestCancelCascadesToActiveReservations(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 50, 100, time.Hour)

	var active []uint64
	for i := 0; i < 3; i++ {
		res := f.store.putReservation(model.Reservation{
			EventID: ev.ID, UserID: uint64(10 + i), SeatCount: 2,
			Status: model.ReservationPending,
		})
		active = append(active, res.ID)
	}
	for i := 0; i < 2; i++ {
		res := f.store.putReservation(model.Reservation{
			EventID: ev.ID, UserID: uint64(20 + i), SeatCount: 2,
			Status: model.ReservationConfirmed,
		})
		active = append(active, res.ID)
	}
	already := f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 30, SeatCount: 2,
		Status: model.ReservationCancelled,
	})

	cancelled, err := f.events.Cancel(context.Background(), ev.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.EventCancelled, cancelled.Status)

	for _, id := range active {
		assert.Equal(t, model.ReservationCancelled, f.store.reservationStatus(id))
	}
	assert.Equal(t, model.ReservationCancelled, f.store.reservationStatus(already.ID))
	assert.Equal(t, 5, f.notifier.count(KindReservationCancelled))
	assert.Equal(t, 1, f.notifier.count(KindEventCancelled))
}

func TestCancelCompletedEventFails(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	ev := f.store.putEvent(model.Event{
		OrganizerID: 1, Capacity: 5,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventCompleted,
	})

	_, err := f.events.Cancel(context.Background(), ev.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	ev := f.store.putEvent(model.Event{
		OrganizerID: 1, Capacity: 5,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventPublished,
	})

	first, err := f.events.Complete(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventCompleted, first.Status)

	second, err := f.events.Complete(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventCompleted, second.Status)
}

func TestCompleteBeforeEndFails(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 5, 100, 24*time.Hour)

	_, err := f.events.Complete(context.Background(), ev.ID)
	assert.ErrorIs(t, err, ErrBusinessRule)
}

func TestCompleteDraftFails(t *testing.T) {
	f := newFixture()
	ev := draftEvent(f, 1, -time.Hour)

	_, err := f.events.Complete(context.Background(), ev.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteBlockedByAnyReservation(t *testing.T) {
	f := newFixture()
	ev := f.publishedEvent(1, 5, 100, 72*time.Hour)
	f.store.putReservation(model.Reservation{
		EventID: ev.ID, UserID: 2, SeatCount: 1,
		Status: model.ReservationCancelled,
	})

	err := f.events.Delete(context.Background(), ev.ID, 1)
	assert.ErrorIs(t, err, ErrBusinessRule, "even a cancelled reservation blocks deletion")
}

func TestDeleteUnreservedEvent(t *testing.T) {
	f := newFixture()
	ev := draftEvent(f, 1, 72*time.Hour)

	err := f.events.Delete(context.Background(), ev.ID, 1)
	require.NoError(t, err)

	_, err = f.events.Get(context.Background(), ev.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletionSweepFlipsDueEvents(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	due1 := f.store.putEvent(model.Event{
		OrganizerID: 1, Capacity: 5,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventPublished,
	})
	due2 := f.store.putEvent(model.Event{
		OrganizerID: 1, Capacity: 5,
		StartsAt: now.Add(-3 * time.Hour), EndsAt: now.Add(-time.Minute),
		Status: model.EventPublished,
	})
	future := f.publishedEvent(1, 5, 100, 24*time.Hour)
	draft := f.store.putEvent(model.Event{
		OrganizerID: 1, Capacity: 5,
		StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		Status: model.EventDraft,
	})

	n, err := f.events.CompletionSweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.Equal(t, model.EventCompleted, f.store.eventStatus(due1.ID))
	assert.Equal(t, model.EventCompleted, f.store.eventStatus(due2.ID))
	assert.Equal(t, model.EventPublished, f.store.eventStatus(future.ID))
	assert.Equal(t, model.EventDraft, f.store.eventStatus(draft.ID))
}
