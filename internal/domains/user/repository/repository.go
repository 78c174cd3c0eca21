package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"dinebook/infras/otel"
	"dinebook/infras/postgres"
	"dinebook/internal/domains/user/model"
	gDto "dinebook/shared/dto"
	gRepo "dinebook/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
}

var sortColumns = gDto.SortColumns{
	model.FieldUsername: model.TableName + "." + model.FieldUsername,
	model.FieldEmail:    model.TableName + "." + model.FieldEmail,
	"created_at":        model.TableName + ".created_at",
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel).
			WithOrdering(sortColumns, model.TableName+".created_at DESC"),
	}
}
