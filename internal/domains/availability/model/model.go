package model

import (
	restaurantModel "dinebook/internal/domains/restaurant/model"
	"dinebook/shared/model"
)

const (
	TableName  = "availabilities"
	EntityName = "availability"

	FieldID           = "id"
	FieldRestaurantID = "restaurant_id"
	FieldDate         = "date"
	FieldStartTime    = "start_time"
	FieldIsAvailable  = "is_available"
	FieldIsBlocked    = "is_blocked"
)

// Availability is a bookable slot of a restaurant. RestaurantOwnerID is read
// from the joined restaurant and never written.
type Availability struct {
	ID                string          `db:"id"`
	RestaurantID      string          `db:"restaurant_id"`
	RestaurantOwnerID string          `db:"restaurant_owner_id" table:"restaurants" column:"user_id"`
	Date              model.Date      `db:"date"`
	StartTime         model.TimeOfDay `db:"start_time"`
	IsAvailable       bool            `db:"is_available"`
	IsBlocked         bool            `db:"is_blocked"`
	model.Metadata
}

func (Availability) GetJoinQuery() string {
	return "JOIN " + restaurantModel.TableName + " ON " + restaurantModel.TableName + "." + restaurantModel.FieldID +
		" = " + TableName + "." + FieldRestaurantID
}

func (a Availability) State() State {
	return StateOf(a.IsAvailable, a.IsBlocked)
}

// WithState returns a copy whose flags encode s.
func (a Availability) WithState(s State) Availability {
	a.IsAvailable, a.IsBlocked = s.Flags()

	return a
}
