package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusTransitions(t *testing.T) {
	all := []EventStatus{EventDraft, EventPublished, EventCancelled, EventCompleted}

	allowed := map[EventStatus]map[EventStatus]bool{
		EventDraft:     {EventPublished: true, EventCancelled: true},
		EventPublished: {EventCancelled: true, EventCompleted: true},
		EventCancelled: {},
		EventCompleted: {},
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransition(to)
			assert.Equal(t, allowed[from][to], got, "%s -> %s", from, to)
		}
	}
}

func TestEventStatusTerminal(t *testing.T) {
	assert.False(t, EventDraft.Terminal())
	assert.False(t, EventPublished.Terminal())
	assert.True(t, EventCancelled.Terminal())
	assert.True(t, EventCompleted.Terminal())
}

func TestReservationStatusTransitions(t *testing.T) {
	all := []ReservationStatus{ReservationPending, ReservationConfirmed, ReservationCancelled}

	allowed := map[ReservationStatus]map[ReservationStatus]bool{
		ReservationPending:   {ReservationConfirmed: true, ReservationCancelled: true},
		ReservationConfirmed: {ReservationCancelled: true},
		ReservationCancelled: {},
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransition(to)
			assert.Equal(t, allowed[from][to], got, "%s -> %s", from, to)
		}
	}

	// a cancelled reservation can never come back
	assert.False(t, ReservationCancelled.CanTransition(ReservationConfirmed))
	assert.False(t, ReservationCancelled.CanTransition(ReservationPending))
}

func TestReservationStatusActive(t *testing.T) {
	assert.True(t, ReservationPending.Active())
	assert.True(t, ReservationConfirmed.Active())
	assert.False(t, ReservationCancelled.Active())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, EventDraft.Valid())
	assert.False(t, EventStatus("ARCHIVED").Valid())
	assert.True(t, ReservationPending.Valid())
	assert.False(t, ReservationStatus("EXPIRED").Valid())
}

func TestEventReservable(t *testing.T) {
	now := time.Now().UTC()
	ev := &Event{Status: EventPublished, StartsAt: now.Add(2 * time.Hour)}
	assert.True(t, ev.Reservable(now))

	started := &Event{Status: EventPublished, StartsAt: now.Add(-time.Minute)}
	assert.False(t, started.Reservable(now))

	draft := &Event{Status: EventDraft, StartsAt: now.Add(2 * time.Hour)}
	assert.False(t, draft.Reservable(now))
}
