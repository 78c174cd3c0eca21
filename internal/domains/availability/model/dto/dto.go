package dto

import (
	"net/http"
	"time"

	"dinebook/internal/domains/availability/model"
	"dinebook/shared"
	gDto "dinebook/shared/dto"
	gModel "dinebook/shared/model"

	"github.com/google/uuid"
)

const (
	QueryParamRestaurantID = "restaurant_id"
	QueryParamDate         = "date"
	QueryParamState        = "state"
)

// CreateAvailabilityRequest opens a new slot. RestaurantID is required from
// administrators and ignored for restaurant users, whose own profile is used.
type CreateAvailabilityRequest struct {
	RestaurantID string           `json:"restaurant_id" validate:"omitempty,uuid"`
	Date         gModel.Date      `json:"date"          validate:"required,date"  swaggertype:"string" example:"2024-06-01"`
	StartTime    gModel.TimeOfDay `json:"start_time"    validate:"required,clock" swaggertype:"string" example:"19:00"`
}

func (r *CreateAvailabilityRequest) ToModel(restaurantID, actor string, now time.Time) model.Availability {
	return model.Availability{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Date:         r.Date,
		StartTime:    r.StartTime,
		Metadata:     gModel.NewMetadata(actor, now),
	}.WithState(model.StateOpen)
}

// UpdateAvailabilityRequest reschedules a slot. State flags only move
// through block, unblock and reservations.
type UpdateAvailabilityRequest struct {
	Date      *gModel.Date      `db:"date"       json:"date,omitempty"       validate:"omitempty,date"  swaggertype:"string"`
	StartTime *gModel.TimeOfDay `db:"start_time" json:"start_time,omitempty" validate:"omitempty,clock" swaggertype:"string"`
}

func (r UpdateAvailabilityRequest) IsEmpty() bool {
	return r.Date == nil && r.StartTime == nil
}

// AvailabilityFilter narrows a slot listing.
type AvailabilityFilter struct {
	RestaurantID string `validate:"omitempty,uuid"`
	Date         string `validate:"omitempty,date"`
	State        string `validate:"omitempty,oneof=open blocked reserved"`
}

func (f *AvailabilityFilter) FromRequest(r *http.Request) {
	query := r.URL.Query()

	f.RestaurantID = query.Get(QueryParamRestaurantID)
	f.Date = query.Get(QueryParamDate)
	f.State = query.Get(QueryParamState)
}

type AvailabilityResponse struct {
	ID           string           `json:"id"`
	RestaurantID string           `json:"restaurant_id"`
	Date         gModel.Date      `json:"date"       swaggertype:"string" example:"2024-06-01"`
	StartTime    gModel.TimeOfDay `json:"start_time" swaggertype:"string" example:"19:00"`
	IsAvailable  bool             `json:"is_available"`
	IsBlocked    bool             `json:"is_blocked"`
	State        string           `json:"state" enums:"open,blocked,reserved"`
	gDto.Metadata
}

func (r *AvailabilityResponse) FromModel(model model.Availability) {
	r.ID = model.ID
	r.RestaurantID = model.RestaurantID
	r.Date = model.Date
	r.StartTime = model.StartTime
	r.IsAvailable = model.IsAvailable
	r.IsBlocked = model.IsBlocked
	r.State = model.State().String()
	r.Metadata.FromModel(model.Metadata)
}

type GetAvailabilitiesResponse struct {
	Availabilities []AvailabilityResponse `json:"availabilities"`
	TotalPage      int                    `json:"total_page"`
	TotalData      int                    `json:"total_data"`
}

func (r *GetAvailabilitiesResponse) FromModels(models []model.Availability, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Availabilities = make([]AvailabilityResponse, len(models))
	for i, mod := range models {
		r.Availabilities[i].FromModel(mod)
	}
}
