package model

import "dinebook/shared/model"

const (
	TableName  = "restaurants"
	EntityName = "restaurant"

	FieldID      = "id"
	FieldUserID  = "user_id"
	FieldName    = "name"
	FieldCuisine = "cuisine"
	FieldAddress = "address"
)

// Restaurant is the profile of a restaurant user. A user owns at most one.
type Restaurant struct {
	ID      string  `db:"id"`
	UserID  string  `db:"user_id"`
	Name    string  `db:"name"`
	Cuisine *string `db:"cuisine"`
	Address *string `db:"address"`
	model.Metadata
}
