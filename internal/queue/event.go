// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Envelope wraps every notification published to the broker.  The ID is a
// fresh UUID per message so downstream consumers can deduplicate
// redeliveries; Kind names the domain transition that produced it.
type Envelope struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

// NewEnvelope stamps a payload with identity, kind and time.
func NewEnvelope(kind string, payload any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}
}
