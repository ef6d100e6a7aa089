package model

import "time"

// Reservation records a holder's claim on a number of seats of an event.
// The seat count is fixed after creation and the total amount is a snapshot
// of seat count × event price taken when the reservation was created; it is
// never recomputed from a later price change.
//
// Fields:
//  ID               – primary key identifier.
//  Code             – short unique human-readable code assigned at creation.
//  EventID          – event being reserved.
//  UserID           – holder of the reservation.
//  SeatCount        – number of seats claimed (1..10).
//  TotalAmountCents – snapshot price in cents for all seats.
//  Status           – current lifecycle state.
//  Comment          – optional note from the holder.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               uint64            `json:"id"`
	Code             string            `json:"code"`
	EventID          uint64            `json:"event_id"`
	UserID           uint64            `json:"user_id"`
	SeatCount        int               `json:"seat_count"`
	TotalAmountCents uint32            `json:"total_amount_cents"`
	Status           ReservationStatus `json:"status"`
	Comment          *string           `json:"comment,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
