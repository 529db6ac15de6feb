package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/tenant/model"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/logger"
	gRepo "meetflow/shared/repository"
)

type Tenant interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Tenant, error)
}

type Salesperson interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Salesperson, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Salesperson, error)
	// ListSubscribable returns active salespersons whose tenant is active.
	ListSubscribable(ctx context.Context) ([]model.Salesperson, error)
}

type tenantRepository struct {
	gRepo.Repository[model.Tenant]
}

func NewTenant(db *postgres.Connection, otel otel.Otel) Tenant {
	return &tenantRepository{
		Repository: gRepo.NewRepository[model.Tenant](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type salespersonRepository struct {
	gRepo.Repository[model.Salesperson]
	db   *postgres.Connection
	otel otel.Otel
}

func NewSalesperson(db *postgres.Connection, otel otel.Otel) Salesperson {
	return &salespersonRepository{
		Repository: gRepo.NewRepository[model.Salesperson](model.SalespersonEntity, model.SalespersonTableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

const listSubscribableQuery = `
SELECT s.id, s.tenant_id, s.graph_user_id, s.display_name, s.timezone, s.active, s.created_at, s.updated_at
FROM salespersons s
JOIN tenants t ON t.id = s.tenant_id
WHERE s.active = TRUE AND t.status = $1
ORDER BY s.tenant_id, s.id`

func (r *salespersonRepository) ListSubscribable(ctx context.Context) ([]model.Salesperson, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".salesperson.ListSubscribable")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, listSubscribableQuery)

	var salespersons []model.Salesperson

	if err := r.db.Read.SelectContext(ctx, &salespersons, listSubscribableQuery, model.StatusActive); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list subscribable salespersons: %w", err)
	}

	return salespersons, nil
}
