package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Tenant=MockTenantService

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/infras/otel"
	"meetflow/internal/domains/tenant/model"
	"meetflow/internal/domains/tenant/model/dto"
	"meetflow/internal/domains/tenant/repository"
	"meetflow/shared"
	"meetflow/shared/cache"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/failure"

	"github.com/rs/zerolog/log"
)

const cacheTenantBySlug = "tenant:slug"

type Tenant interface {
	ResolveBySlug(ctx context.Context, slug string) (model.Tenant, error)
	Get(ctx context.Context, id string) (model.Tenant, error)
	GetSalesperson(ctx context.Context, tenantID, salespersonID string) (model.Salesperson, error)
	ListSalespersons(ctx context.Context, tenantID string) (dto.SalespersonsResponse, error)
}

type serviceImpl struct {
	tenants      repository.Tenant
	salespersons repository.Salesperson
	cache        cache.RedisCache
	cfg          *config.Config
	otel         otel.Otel
}

func New(tenants repository.Tenant, salespersons repository.Salesperson, cache cache.RedisCache, cfg *config.Config, otel otel.Otel) Tenant {
	return &serviceImpl{
		tenants:      tenants,
		salespersons: salespersons,
		cache:        cache,
		cfg:          cfg,
		otel:         otel,
	}
}

func (s *serviceImpl) ResolveBySlug(ctx context.Context, slug string) (tenant model.Tenant, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ResolveBySlug")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheTenantBySlug, slug)

	if err = s.cache.Get(ctx, cacheKey, &tenant); err == nil && tenant.ID != "" {
		return tenant, checkBookable(tenant)
	}

	tenant, err = s.tenants.Get(ctx, shared.FilterByID(slug, model.FieldSlug, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("failed to get tenant")

		return tenant, fmt.Errorf("failed to get tenant: %w", err)
	}

	if tenant.ID == "" {
		return tenant, failure.NotFound("tenant not found") // nolint:wrapcheck
	}

	if s.cfg.Cache.TTL > 0 {
		if err := s.cache.Save(ctx, cacheKey, tenant, s.cfg.Cache.TTL); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("failed to cache tenant")
		}
	}

	return tenant, checkBookable(tenant)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (tenant model.Tenant, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetTenant")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tenant, err = s.tenants.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get tenant")

		return tenant, fmt.Errorf("failed to get tenant: %w", err)
	}

	if tenant.ID == "" {
		return tenant, failure.NotFound("tenant not found") // nolint:wrapcheck
	}

	return tenant, nil
}

func (s *serviceImpl) GetSalesperson(ctx context.Context, tenantID, salespersonID string) (salesperson model.Salesperson, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetSalesperson")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByTenant(tenantID, model.FieldTenantID, salespersonID, model.FieldID, model.SalespersonTableName)

	salesperson, err = s.salespersons.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get salesperson")

		return salesperson, fmt.Errorf("failed to get salesperson: %w", err)
	}

	if salesperson.ID == "" || !salesperson.Active {
		return salesperson, failure.NotFound("salesperson not found") // nolint:wrapcheck
	}

	return salesperson, nil
}

func (s *serviceImpl) ListSalespersons(ctx context.Context, tenantID string) (res dto.SalespersonsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListSalespersons")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByFields(model.SalespersonTableName, []string{model.FieldTenantID, model.FieldActive}, tenantID, true)
	params := gDto.QueryParams{SortBy: "display_name", SortDir: gDto.SortDirAsc}

	models, err := s.salespersons.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list salespersons")

		return res, fmt.Errorf("failed to list salespersons: %w", err)
	}

	res.FromModels(models)

	return res, nil
}

func checkBookable(tenant model.Tenant) error {
	if !tenant.Bookable() {
		return failure.Forbidden("tenant is suspended") // nolint:wrapcheck
	}

	return nil
}
