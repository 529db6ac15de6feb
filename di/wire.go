//go:build wireinject
// +build wireinject

package di

import (
	"meetflow/config"
	"meetflow/infras/graph"
	"meetflow/infras/jwt"
	"meetflow/infras/metrics"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/infras/queue"
	"meetflow/infras/redis"
	"meetflow/infras/s3"
	"meetflow/infras/zoom"
	"meetflow/internal/workers"
	"meetflow/shared/cache"
	"meetflow/transport/http"
	"meetflow/transport/http/middleware"
	"meetflow/transport/http/router"

	auditRepository "meetflow/internal/domains/audit/repository"
	auditService "meetflow/internal/domains/audit/service"
	bookingRepository "meetflow/internal/domains/booking/repository"
	bookingService "meetflow/internal/domains/booking/service"
	compensationRepository "meetflow/internal/domains/compensation/repository"
	compensationService "meetflow/internal/domains/compensation/service"
	customerRepository "meetflow/internal/domains/customer/repository"
	idempotencyRepository "meetflow/internal/domains/idempotency/repository"
	idempotencyService "meetflow/internal/domains/idempotency/service"
	reconciliationService "meetflow/internal/domains/reconciliation/service"
	subscriptionRepository "meetflow/internal/domains/subscription/repository"
	subscriptionService "meetflow/internal/domains/subscription/service"
	tenantRepository "meetflow/internal/domains/tenant/repository"
	tenantService "meetflow/internal/domains/tenant/service"
	webhookRepository "meetflow/internal/domains/webhook/repository"
	webhookService "meetflow/internal/domains/webhook/service"
	operatorHandler "meetflow/internal/handlers/operator"
	publicHandler "meetflow/internal/handlers/public"
	webhookHandler "meetflow/internal/handlers/webhook"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	redis.NewLocker,
	jwt.New,
	graph.New,
	zoom.New,
	s3.New,
	metrics.New,
	queue.Open,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var tenantDomain = wire.NewSet(
	tenantRepository.NewTenant,
	tenantRepository.NewSalesperson,
	tenantService.New,
)

var bookingDomain = wire.NewSet(
	customerRepository.New,
	bookingRepository.NewBooking,
	bookingRepository.NewHold,
	bookingRepository.NewMeeting,
	bookingRepository.NewProviderEvent,
	wire.Struct(new(bookingService.Repositories), "*"),
	wire.Struct(new(bookingService.Providers), "*"),
	bookingService.New,
)

var ledgerDomain = wire.NewSet(
	idempotencyRepository.New,
	idempotencyService.New,
	compensationRepository.New,
	compensationService.New,
	auditRepository.NewAuditLog,
	auditRepository.NewTrackingEvent,
	auditService.New,
)

var webhookDomain = wire.NewSet(
	subscriptionRepository.New,
	subscriptionService.New,
	reconciliationService.New,
	webhookRepository.New,
	webhookService.New,
)

var domains = wire.NewSet(
	tenantDomain,
	bookingDomain,
	ledgerDomain,
	webhookDomain,
)

var background = wire.NewSet(
	workers.NewWebhookWorker,
	provideRunner,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	publicHandler.New,
	operatorHandler.New,
	webhookHandler.New,
	router.New,
)

func InitializeApp() (*App, func(), error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		background,
		routing,
		provideHealthChecks,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return nil, nil, nil
}
