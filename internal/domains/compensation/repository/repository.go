package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/compensation/model"
	gDto "meetflow/shared/dto"
	gRepo "meetflow/shared/repository"
)

type Compensation interface {
	Insert(ctx context.Context, model model.Job) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Job, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, mod map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Job]
}

func New(db *postgres.Connection, otel otel.Otel) Compensation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Job](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
