package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"dinebook/infras/otel"
	"dinebook/infras/postgres"
	"dinebook/internal/domains/availability/model"
	restaurantModel "dinebook/internal/domains/restaurant/model"
	"dinebook/internal/policy"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	gRepo "dinebook/shared/repository"
)

type Availability interface {
	Insert(ctx context.Context, model model.Availability) error
	InsertBulk(ctx context.Context, models []model.Availability) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Availability, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Availability, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Availability, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	DeleteAffected(ctx context.Context, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	SwapState(ctx context.Context, id string, from, to model.State, actor string, at time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Availability]
}

var sortColumns = gDto.SortColumns{
	model.FieldDate:      model.TableName + "." + model.FieldDate,
	model.FieldStartTime: model.TableName + "." + model.FieldStartTime,
	"created_at":         model.TableName + ".created_at",
}

func New(db *postgres.Connection, otel otel.Otel) Availability {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Availability](model.EntityName, model.TableName, model.FieldID, db, otel).
			WithOrdering(sortColumns, model.TableName+"."+model.FieldDate+" ASC, "+model.TableName+"."+model.FieldStartTime+" ASC"),
	}
}

// SwapState moves slot id from one state to another only if it still holds
// from. It returns gRepo.ErrStateConflict when the row had moved on.
func (r *repositoryImpl) SwapState(ctx context.Context, id string, from, to model.State, actor string, at time.Time) error {
	isAvailable, isBlocked := to.Flags()

	affected, err := r.UpdateAffected(ctx, map[string]any{
		model.FieldIsAvailable:   isAvailable,
		model.FieldIsBlocked:     isBlocked,
		constant.FieldModifiedAt: at,
		constant.FieldModifiedBy: actor,
	}, gDto.And(gDto.Eq(model.TableName, model.FieldID, id), StateFilter(from)))
	if err != nil {
		return err
	}

	if affected == 0 {
		return gRepo.ErrStateConflict
	}

	return nil
}

// StateFilter matches slots currently in s.
func StateFilter(s model.State) gDto.Filter {
	available := model.TableName + "." + model.FieldIsAvailable
	blocked := model.TableName + "." + model.FieldIsBlocked

	switch s {
	case model.StateOpen:
		return gDto.Plain(available + " AND NOT " + blocked)
	case model.StateBlocked:
		return gDto.Plain(blocked)
	case model.StateReserved:
		return gDto.Plain("NOT " + available + " AND NOT " + blocked)
	case model.StateUnknown:
		return gDto.Plain("FALSE")
	default:
		return gDto.Plain("FALSE")
	}
}

// NotReservedFilter matches slots that carry no reservation.
func NotReservedFilter() gDto.Filter {
	return gDto.Plain(model.TableName + "." + model.FieldIsAvailable + " OR " + model.TableName + "." + model.FieldIsBlocked)
}

// ScopeFilter restricts a listing to the rows the scope rule lets the actor
// see. ScopeAll adds no condition.
func ScopeFilter(rule policy.ScopeRule, userID string) gDto.FilterGroup {
	switch rule {
	case policy.ScopeAll:
		return gDto.FilterGroup{}
	case policy.ScopeOwnRestaurant:
		return gDto.And(gDto.Eq(restaurantModel.TableName, restaurantModel.FieldUserID, userID))
	case policy.ScopeOwnDiner, policy.ScopeNone:
		return gDto.And(gDto.Plain("FALSE"))
	default:
		return gDto.And(gDto.Plain("FALSE"))
	}
}
