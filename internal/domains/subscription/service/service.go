package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Subscription=MockSubscriptionService

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/infras/graph"
	"meetflow/infras/metrics"
	"meetflow/infras/otel"
	"meetflow/internal/domains/subscription/model"
	"meetflow/internal/domains/subscription/model/dto"
	"meetflow/internal/domains/subscription/repository"
	tenantModel "meetflow/internal/domains/tenant/model"
	tenantRepo "meetflow/internal/domains/tenant/repository"
	"meetflow/shared"
	"meetflow/shared/constant"
	gModel "meetflow/shared/model"
	gRepo "meetflow/shared/repository"
	"meetflow/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Subscription interface {
	// Resolve returns the zero value when the provider subscription id is unknown.
	Resolve(ctx context.Context, subscriptionID string) (model.Subscription, error)
	EnsureSubscriptions(ctx context.Context) (dto.EnsureResult, error)
}

type serviceImpl struct {
	repo         repository.Subscription
	salespersons tenantRepo.Salesperson
	graph        graph.Client
	metrics      *metrics.Metrics
	cfg          *config.Config
	otel         otel.Otel
}

func New(repo repository.Subscription, salespersons tenantRepo.Salesperson, graph graph.Client, metrics *metrics.Metrics, cfg *config.Config, otel otel.Otel) Subscription {
	return &serviceImpl{
		repo:         repo,
		salespersons: salespersons,
		graph:        graph,
		metrics:      metrics,
		cfg:          cfg,
		otel:         otel,
	}
}

func (s *serviceImpl) Resolve(ctx context.Context, subscriptionID string) (res model.Subscription, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".subscription.Resolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.repo.Get(ctx, shared.FilterByID(subscriptionID, model.FieldSubscriptionID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("subscription_id", subscriptionID).Msg("failed to resolve subscription")

		return res, fmt.Errorf("failed to resolve subscription: %w", err)
	}

	return res, nil
}

// EnsureSubscriptions creates missing subscriptions and renews those close to
// lapsing for every active salesperson of an active tenant. A failure for one
// salesperson is logged and does not stop the pass.
func (s *serviceImpl) EnsureSubscriptions(ctx context.Context) (res dto.EnsureResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".subscription.EnsureSubscriptions")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	salespersons, err := s.salespersons.ListSubscribable(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list subscribable salespersons")

		return res, fmt.Errorf("failed to list subscribable salespersons: %w", err)
	}

	now := timezone.Now().UTC()
	desired := now.Add(s.cfg.SubscriptionDuration())
	cutoff := now.Add(s.cfg.RenewalThreshold())

	for _, salesperson := range salespersons {
		if ctx.Err() != nil {
			return res, ctx.Err() //nolint:wrapcheck
		}

		action, err := s.ensure(ctx, salesperson, now, desired, cutoff)
		if err != nil {
			res.Failed++
			s.metrics.RecordSubscription(metrics.SubscriptionErrored)
			log.Error().Err(err).Str("salesperson_id", salesperson.ID).Msg("failed to ensure subscription")

			continue
		}

		switch action {
		case metrics.SubscriptionCreated:
			res.Created++
		case metrics.SubscriptionRenewed:
			res.Renewed++
		default:
			continue
		}

		s.metrics.RecordSubscription(action)
	}

	return res, nil
}

func (s *serviceImpl) ensure(ctx context.Context, salesperson tenantModel.Salesperson, now, desired, cutoff time.Time) (string, error) {
	existing, err := s.repo.Get(ctx, shared.FilterByTenant(salesperson.TenantID, model.FieldTenantID, salesperson.ID, model.FieldSalespersonID, model.TableName))
	if err != nil {
		return "", fmt.Errorf("failed to get subscription: %w", err)
	}

	if existing.ID == "" {
		return s.create(ctx, salesperson, now, desired)
	}

	if !existing.Due(cutoff) {
		return "", nil
	}

	renewed, err := s.graph.RenewSubscription(ctx, existing.SubscriptionID, desired)
	if err != nil {
		return "", fmt.Errorf("failed to renew subscription: %w", err)
	}

	_, err = s.repo.Update(ctx, map[string]any{
		model.FieldExpiresAt: expiryOr(renewed.ExpiresAt, desired),
		model.FieldUpdatedAt: now,
	}, shared.FilterByID(existing.ID, model.FieldID, model.TableName))
	if err != nil {
		return "", fmt.Errorf("failed to store renewed subscription: %w", err)
	}

	log.Info().Str("salesperson_id", salesperson.ID).Str("subscription_id", existing.SubscriptionID).Msg("subscription renewed")

	return metrics.SubscriptionRenewed, nil
}

// create reports an empty action when another replica stored the row first.
func (s *serviceImpl) create(ctx context.Context, salesperson tenantModel.Salesperson, now, desired time.Time) (string, error) {
	resource := graph.EventsResource(salesperson.GraphUserID)

	created, err := s.graph.CreateSubscription(ctx, graph.SubscriptionInput{
		Resource:    resource,
		ExpiresAt:   desired,
		ClientState: s.cfg.Webhook.ClientState,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create subscription: %w", err)
	}

	err = s.repo.Insert(ctx, model.Subscription{
		ID:             uuid.NewString(),
		TenantID:       salesperson.TenantID,
		SalespersonID:  salesperson.ID,
		SubscriptionID: created.SubscriptionID,
		Resource:       resource,
		ExpiresAt:      expiryOr(created.ExpiresAt, desired),
		Metadata:       gModel.NewMetadata(now),
	})
	if err != nil {
		if gRepo.IsConstraintViolation(err) {
			// another replica stored its subscription first; the provider one created here lapses on its own
			log.Warn().Str("salesperson_id", salesperson.ID).Str("subscription_id", created.SubscriptionID).Msg("subscription already stored")

			return "", nil
		}

		return "", fmt.Errorf("failed to store subscription: %w", err)
	}

	log.Info().Str("salesperson_id", salesperson.ID).Str("subscription_id", created.SubscriptionID).Msg("subscription created")

	return metrics.SubscriptionCreated, nil
}

func expiryOr(confirmed, desired time.Time) time.Time {
	if confirmed.IsZero() {
		return desired
	}

	return confirmed.UTC()
}
