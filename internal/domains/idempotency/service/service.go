package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"meetflow/infras/otel"
	"meetflow/internal/domains/idempotency/model"
	"meetflow/internal/domains/idempotency/repository"
	"meetflow/shared"
	"meetflow/shared/constant"
	gRepo "meetflow/shared/repository"
	"meetflow/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Ledger answers "has this key already executed" for side-effecting operations.
type Ledger interface {
	Check(ctx context.Context, tenantID, scope, key string) (bool, error)
	// Record is itself idempotent: recording an existing key succeeds.
	Record(ctx context.Context, tenantID, scope, key string) error
}

type serviceImpl struct {
	repo repository.Idempotency
	otel otel.Otel
}

func New(repo repository.Idempotency, otel otel.Otel) Ledger {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) Check(ctx context.Context, tenantID, scope, key string) (exist bool, err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".idempotency.Check")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	filter := shared.FilterByFields(model.TableName,
		[]string{model.FieldTenantID, model.FieldScope, model.FieldKey},
		tenantID, scope, key)

	exist, err = s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("scope", scope).Msg("failed to check idempotency key")

		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	return exist, nil
}

func (s *serviceImpl) Record(ctx context.Context, tenantID, scope, key string) (err error) {
	ctx, span := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".idempotency.Record")
	defer span.End()
	defer func() { span.TraceIfError(err) }()

	record := model.Record{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Scope:     scope,
		Key:       key,
		CreatedAt: timezone.Now().UTC(),
	}

	err = s.repo.Insert(ctx, record)
	if gRepo.IsConstraintViolation(err) {
		return nil
	}

	if err != nil {
		log.Error().Err(err).Str("scope", scope).Msg("failed to record idempotency key")

		return fmt.Errorf("failed to record idempotency key: %w", err)
	}

	return nil
}
