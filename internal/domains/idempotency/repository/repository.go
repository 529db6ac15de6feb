package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/idempotency/model"
	gDto "meetflow/shared/dto"
	gRepo "meetflow/shared/repository"
)

type Idempotency interface {
	Insert(ctx context.Context, model model.Record) error
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Record]
}

func New(db *postgres.Connection, otel otel.Otel) Idempotency {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Record](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
