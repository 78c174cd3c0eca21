package model

import "time"

const (
	EventBlocked   = "availability.blocked"
	EventUnblocked = "availability.unblocked"
)

// Event is published on the availability topic, keyed by slot id.
type Event struct {
	Type           string    `json:"type"`
	AvailabilityID string    `json:"availability_id"`
	RestaurantID   string    `json:"restaurant_id"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
