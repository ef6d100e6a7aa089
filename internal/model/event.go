package model

import "time"

// Event represents a scheduled offering with a fixed seat capacity.  An
// event is created as a draft by its organizer, published to accept
// reservations, and eventually cancelled or completed.  Capacity is the
// total number of seats; the sum of seats held by PENDING and CONFIRMED
// reservations must never exceed it.
//
// Fields:
//  ID          – primary key identifier.
//  OrganizerID – user who created and manages the event.
//  Title       – short display name.
//  Description – free-form description, may be empty.
//  Category    – classification used for browsing/filtering.
//  Location    – venue name or address.
//  City        – city used for filtering.
//  StartsAt    – when the event begins (UTC).
//  EndsAt      – when the event ends (UTC, after StartsAt).
//  Capacity    – total seats available, at least 1.
//  PriceCents  – price per seat in cents at reservation time.
//  ImageURL    – optional reference to an uploaded image.
//  Status      – current lifecycle state.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64      `json:"id"`
	OrganizerID uint64      `json:"organizer_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Location    string      `json:"location"`
	City        string      `json:"city"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Capacity    int         `json:"capacity"`
	PriceCents  uint32      `json:"price_cents"`
	ImageURL    *string     `json:"image_url,omitempty"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Reservable reports whether the event accepts new reservations at the
// given instant: it must be published and must not have started yet.
// Callers that mutate state must not rely on this snapshot alone; the
// authoritative check runs inside the reserve transaction on locked data.
func (e *Event) Reservable(now time.Time) bool {
	return e.Status == EventPublished && e.StartsAt.After(now)
}
