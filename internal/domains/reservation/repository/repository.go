package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"dinebook/infras/otel"
	"dinebook/infras/postgres"
	availabilityModel "dinebook/internal/domains/availability/model"
	"dinebook/internal/domains/reservation/model"
	restaurantModel "dinebook/internal/domains/restaurant/model"
	"dinebook/internal/policy"
	gDto "dinebook/shared/dto"
	gRepo "dinebook/shared/repository"
)

type Reservation interface {
	Insert(ctx context.Context, model model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteAffected(ctx context.Context, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
}

var sortColumns = gDto.SortColumns{
	"date":       availabilityModel.TableName + "." + availabilityModel.FieldDate,
	"created_at": model.TableName + "." + model.FieldCreatedAt,
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel).
			WithOrdering(sortColumns, availabilityModel.TableName+"."+availabilityModel.FieldDate+" ASC, "+
				availabilityModel.TableName+"."+availabilityModel.FieldStartTime+" ASC"),
	}
}

// ByAvailability matches the reservation holding a slot.
func ByAvailability(availabilityID string) gDto.FilterGroup {
	return gDto.And(gDto.Eq(model.TableName, model.FieldAvailabilityID, availabilityID))
}

// ScopeFilter restricts a listing to the reservations the scope rule lets
// the actor see. ScopeAll adds no condition.
func ScopeFilter(rule policy.ScopeRule, userID string) gDto.FilterGroup {
	switch rule {
	case policy.ScopeAll:
		return gDto.FilterGroup{}
	case policy.ScopeOwnRestaurant:
		return gDto.And(gDto.Eq(restaurantModel.TableName, restaurantModel.FieldUserID, userID))
	case policy.ScopeOwnDiner:
		return gDto.And(gDto.Eq(model.TableName, model.FieldDinerID, userID))
	case policy.ScopeNone:
		return gDto.And(gDto.Plain("FALSE"))
	default:
		return gDto.And(gDto.Plain("FALSE"))
	}
}
