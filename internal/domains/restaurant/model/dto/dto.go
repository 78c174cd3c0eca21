package dto

import (
	"time"

	"dinebook/internal/domains/restaurant/model"
	"dinebook/shared"
	gDto "dinebook/shared/dto"
	gModel "dinebook/shared/model"

	"github.com/google/uuid"
)

type CreateRestaurantRequest struct {
	UserID  string  `json:"user_id" validate:"required,uuid"`
	Name    string  `json:"name"    validate:"required,max=100"`
	Cuisine *string `json:"cuisine" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

func (r *CreateRestaurantRequest) ToModel(actor string, now time.Time) model.Restaurant {
	return model.Restaurant{
		ID:       uuid.NewString(),
		UserID:   r.UserID,
		Name:     r.Name,
		Cuisine:  r.Cuisine,
		Address:  r.Address,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

// UpdateRestaurantRequest never moves a profile to another user.
type UpdateRestaurantRequest struct {
	Name    *string `db:"name"    json:"name,omitempty"    validate:"omitempty,min=1,max=100"`
	Cuisine *string `db:"cuisine" json:"cuisine,omitempty" validate:"omitempty,max=50"`
	Address *string `db:"address" json:"address,omitempty" validate:"omitempty,max=255"`
}

type RestaurantResponse struct {
	ID      string  `json:"id"`
	UserID  string  `json:"user_id"`
	Name    string  `json:"name"`
	Cuisine *string `json:"cuisine"`
	Address *string `json:"address"`
	gDto.Metadata
}

func (r *RestaurantResponse) FromModel(model model.Restaurant) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Name = model.Name
	r.Cuisine = model.Cuisine
	r.Address = model.Address
	r.Metadata.FromModel(model.Metadata)
}

type GetRestaurantsResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetRestaurantsResponse) FromModels(models []model.Restaurant, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Restaurants = make([]RestaurantResponse, len(models))
	for i, mod := range models {
		r.Restaurants[i].FromModel(mod)
	}
}
