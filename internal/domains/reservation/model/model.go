package model

import (
	"time"

	availabilityModel "dinebook/internal/domains/availability/model"
	restaurantModel "dinebook/internal/domains/restaurant/model"
	"dinebook/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID             = "id"
	FieldRestaurantID   = "restaurant_id"
	FieldDinerID        = "diner_id"
	FieldAvailabilityID = "availability_id"
	FieldCreatedAt      = "created_at"
)

// Reservation books one slot for one diner. RestaurantID is always copied
// from the slot. The owner and schedule columns come from joins.
type Reservation struct {
	ID                string          `db:"id"`
	RestaurantID      string          `db:"restaurant_id"`
	DinerID           string          `db:"diner_id"`
	AvailabilityID    string          `db:"availability_id"`
	CreatedAt         time.Time       `db:"created_at"`
	RestaurantOwnerID string          `db:"restaurant_owner_id" table:"restaurants" column:"user_id"`
	Date              model.Date      `db:"date"                table:"availabilities"`
	StartTime         model.TimeOfDay `db:"start_time"          table:"availabilities"`
}

func (Reservation) GetJoinQuery() string {
	return "JOIN " + restaurantModel.TableName + " ON " + restaurantModel.TableName + "." + restaurantModel.FieldID +
		" = " + TableName + "." + FieldRestaurantID +
		" JOIN " + availabilityModel.TableName + " ON " + availabilityModel.TableName + "." + availabilityModel.FieldID +
		" = " + TableName + "." + FieldAvailabilityID
}

// StartsAt is the slot start in loc.
func (r Reservation) StartsAt(loc *time.Location) time.Time {
	return r.Date.At(r.StartTime, loc)
}

// IsPast reports whether the slot started strictly before now.
func (r Reservation) IsPast(now time.Time, loc *time.Location) bool {
	return r.StartsAt(loc).Before(now)
}
