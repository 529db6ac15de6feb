package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/webhook/model"
	gDto "meetflow/shared/dto"
	gRepo "meetflow/shared/repository"
	"time"
)

type Job interface {
	Insert(ctx context.Context, model model.Job) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Job, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, mod map[string]any, filter gDto.FilterGroup) (int64, error)
	// ListStale returns pending or processing jobs last updated at or before cutoff, oldest first.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]model.Job, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Job]
}

func New(db *postgres.Connection, otel otel.Otel) Job {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Job](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]model.Job, error) {
	params := gDto.QueryParams{
		Limit:   limit,
		SortBy:  model.FieldUpdatedAt,
		SortDir: gDto.SortDirAsc,
	}

	return r.GetAll(ctx, params, model.StaleFilter(cutoff)) //nolint:wrapcheck
}
