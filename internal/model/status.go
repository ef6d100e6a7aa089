package model

// This file contains the status machines for events and reservations.  The
// tables are pure data: they answer whether a transition is allowed and have
// no side effects.  All writes that change a status must first consult these
// tables; the persistence layer additionally guards the same transition with
// a conditional UPDATE so that concurrent writers cannot race past the check.

// EventStatus enumerates the lifecycle states of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"     // created by an organizer, not yet visible
	EventPublished EventStatus = "PUBLISHED" // open for reservations
	EventCancelled EventStatus = "CANCELLED" // withdrawn by the organizer (terminal)
	EventCompleted EventStatus = "COMPLETED" // end time has passed (terminal)
)

// Valid reports whether s is one of the known event statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s EventStatus) Terminal() bool {
	return s == EventCancelled || s == EventCompleted
}

// eventTransitions lists the allowed direct moves:
// Draft → Published, Draft → Cancelled, Published → Cancelled,
// Published → Completed (time-driven).
var eventTransitions = map[EventStatus][]EventStatus{
	EventDraft:     {EventPublished, EventCancelled},
	EventPublished: {EventCancelled, EventCompleted},
}

// CanTransition reports whether an event in status s may move directly to
// status to.  Terminal statuses allow nothing.
func (s EventStatus) CanTransition(to EventStatus) bool {
	for _, t := range eventTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// ReservationStatus enumerates the lifecycle states of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"   // seats committed, awaiting confirmation
	ReservationConfirmed ReservationStatus = "CONFIRMED" // finalized by the holder or organizer
	ReservationCancelled ReservationStatus = "CANCELLED" // released (terminal)
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s ReservationStatus) Terminal() bool { return s == ReservationCancelled }

// Active reports whether the reservation still counts against event capacity.
// Cancelled reservations never count.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationCancelled},
}

// CanTransition reports whether a reservation in status s may move directly
// to status to.  A cancelled reservation cannot be re-confirmed.
func (s ReservationStatus) CanTransition(to ReservationStatus) bool {
	for _, t := range reservationTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}
