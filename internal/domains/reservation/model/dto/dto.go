package dto

import (
	"net/http"
	"time"

	"dinebook/internal/domains/reservation/model"
	"dinebook/shared"
	"dinebook/shared/constant"
	gModel "dinebook/shared/model"
	"dinebook/shared/timezone"
)

const (
	QueryParamRestaurantID = "restaurant_id"
	QueryParamDate         = "date"
)

// CreateReservationRequest names only the slot. The diner is the caller and
// the restaurant is taken from the slot.
type CreateReservationRequest struct {
	AvailabilityID string `json:"availability_id" validate:"required,uuid"`
}

// ReservationFilter narrows a reservation listing.
type ReservationFilter struct {
	RestaurantID string `validate:"omitempty,uuid"`
	Date         string `validate:"omitempty,date"`
}

func (f *ReservationFilter) FromRequest(r *http.Request) {
	query := r.URL.Query()

	f.RestaurantID = query.Get(QueryParamRestaurantID)
	f.Date = query.Get(QueryParamDate)
}

type ReservationResponse struct {
	ID             string           `json:"id"`
	RestaurantID   string           `json:"restaurant_id"`
	DinerID        string           `json:"diner_id"`
	AvailabilityID string           `json:"availability_id"`
	Date           gModel.Date      `json:"date"       swaggertype:"string" example:"2024-06-01"`
	StartTime      gModel.TimeOfDay `json:"start_time" swaggertype:"string" example:"19:00"`
	IsPast         bool             `json:"is_past"`
	CreatedAt      string           `json:"created_at"`
}

// FromModel fills the response. is_past is evaluated against now in the
// application timezone.
func (r *ReservationResponse) FromModel(model model.Reservation, now time.Time) {
	r.ID = model.ID
	r.RestaurantID = model.RestaurantID
	r.DinerID = model.DinerID
	r.AvailabilityID = model.AvailabilityID
	r.Date = model.Date
	r.StartTime = model.StartTime
	r.IsPast = model.IsPast(now, timezone.GetLocation())
	r.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int, now time.Time) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod, now)
	}
}
