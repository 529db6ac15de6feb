package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/subscription/model"
	gDto "meetflow/shared/dto"
	gRepo "meetflow/shared/repository"
)

type Subscription interface {
	Insert(ctx context.Context, model model.Subscription) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Subscription, error)
	Update(ctx context.Context, mod map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Subscription]
}

func New(db *postgres.Connection, otel otel.Otel) Subscription {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Subscription](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
