package model

import "time"

const (
	EventCreated   = "reservation.created"
	EventCancelled = "reservation.cancelled"
)

// Event is published on the reservation topic after the booking transaction
// commits. Consumers must tolerate loss: publication is best effort.
type Event struct {
	Type           string    `json:"type"`
	ReservationID  string    `json:"reservation_id"`
	AvailabilityID string    `json:"availability_id"`
	RestaurantID   string    `json:"restaurant_id"`
	DinerID        string    `json:"diner_id"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, r Reservation, actorID string, at time.Time) Event {
	return Event{
		Type:           eventType,
		ReservationID:  r.ID,
		AvailabilityID: r.AvailabilityID,
		RestaurantID:   r.RestaurantID,
		DinerID:        r.DinerID,
		ActorID:        actorID,
		OccurredAt:     at,
	}
}
