package model

import "time"

// Review is a holder's rating of an event, attached 1:1 to a reservation.
// A review may only exist once its reservation is confirmed and the event
// has completed; a second submission updates the existing row rather than
// creating a new one.  EventID and UserID are copied from the reservation
// at creation time for read convenience.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – the reservation being reviewed (unique).
//  EventID       – event reference copied from the reservation.
//  UserID        – holder reference copied from the reservation.
//  Rating        – integer score from 1 to 5.
//  Comment       – optional free-form text.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Review struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	EventID       uint64    `json:"event_id"`
	UserID        uint64    `json:"user_id"`
	Rating        int       `json:"rating"`
	Comment       *string   `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
