package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/customer/model"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/logger"
	gRepo "meetflow/shared/repository"
)

type Customer interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Customer, error)
	// Upsert inserts the customer or refreshes name and company of the existing
	// (tenant, email) row, returning the stored row either way.
	Upsert(ctx context.Context, customer model.Customer) (model.Customer, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Customer]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Customer {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Customer](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

const upsertQuery = `
INSERT INTO customers (id, tenant_id, email, name, company, created_at, updated_at)
VALUES (:id, :tenant_id, :email, :name, :company, :created_at, :updated_at)
ON CONFLICT (tenant_id, email) DO UPDATE
SET name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
    company = COALESCE(NULLIF(EXCLUDED.company, ''), customers.company),
    updated_at = EXCLUDED.updated_at
RETURNING id, tenant_id, email, name, company, created_at, updated_at`

func (r *repositoryImpl) Upsert(ctx context.Context, customer model.Customer) (model.Customer, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".customer.Upsert")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, upsertQuery)

	var stored model.Customer

	stmt, err := r.db.Write.PrepareNamedContext(ctx, upsertQuery)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return stored, fmt.Errorf("failed to prepare customer upsert: %w", err)
	}
	defer stmt.Close()

	if err = stmt.GetContext(ctx, &stored, customer); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return stored, fmt.Errorf("failed to upsert customer: %w", err)
	}

	return stored, nil
}
