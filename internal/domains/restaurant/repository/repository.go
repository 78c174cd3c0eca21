package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"dinebook/infras/otel"
	"dinebook/infras/postgres"
	"dinebook/internal/domains/restaurant/model"
	gDto "dinebook/shared/dto"
	gRepo "dinebook/shared/repository"
)

type Restaurant interface {
	Insert(ctx context.Context, model model.Restaurant) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Restaurant, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Restaurant, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Restaurant]
}

var sortColumns = gDto.SortColumns{
	model.FieldName:    model.TableName + "." + model.FieldName,
	model.FieldCuisine: model.TableName + "." + model.FieldCuisine,
	"created_at":       model.TableName + ".created_at",
}

func New(db *postgres.Connection, otel otel.Otel) Restaurant {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Restaurant](model.EntityName, model.TableName, model.FieldID, db, otel).
			WithOrdering(sortColumns, model.TableName+"."+model.FieldName+" ASC"),
	}
}
