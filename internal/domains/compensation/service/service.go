package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Compensation=MockCompensationService

import (
	"context"
	"fmt"
	"meetflow/infras/otel"
	"meetflow/internal/domains/compensation/model"
	"meetflow/internal/domains/compensation/model/dto"
	"meetflow/internal/domains/compensation/repository"
	"meetflow/shared"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/failure"
	gModel "meetflow/shared/model"
	"meetflow/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxDetailLength = 2000

type Compensation interface {
	Record(ctx context.Context, tenantID, bookingID, reason string, cause error) error
	List(ctx context.Context, tenantID string, params gDto.QueryParams, status string) (dto.JobsResponse, error)
	Resolve(ctx context.Context, tenantID, id string) error
}

type serviceImpl struct {
	repo repository.Compensation
	otel otel.Otel
}

func New(repo repository.Compensation, otel otel.Otel) Compensation {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) Record(ctx context.Context, tenantID, bookingID, reason string, cause error) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".compensation.Record")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	detail := ""
	if cause != nil {
		detail = shared.TruncateText(cause.Error(), maxDetailLength)
	}

	job := model.Job{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		BookingID: bookingID,
		Reason:    reason,
		Detail:    detail,
		Status:    model.StatusPending,
		Metadata:  gModel.NewMetadata(timezone.Now().UTC()),
	}

	if err = s.repo.Insert(ctx, job); err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Str("reason", reason).Msg("failed to record compensation job")

		return fmt.Errorf("failed to record compensation job: %w", err)
	}

	log.Warn().Str("booking_id", bookingID).Str("reason", reason).Msg("compensation job recorded")

	return nil
}

func (s *serviceImpl) List(ctx context.Context, tenantID string, params gDto.QueryParams, status string) (res dto.JobsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".compensation.List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := []string{model.FieldTenantID}
	values := []any{tenantID}

	if status != "" {
		fields = append(fields, model.FieldStatus)
		values = append(values, status)
	}

	filter := shared.FilterByFields(model.TableName, fields, values...)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count compensation jobs")

		return res, fmt.Errorf("failed to count compensation jobs: %w", err)
	}

	jobs, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list compensation jobs")

		return res, fmt.Errorf("failed to list compensation jobs: %w", err)
	}

	res.FromModels(jobs, params, total)

	return res, nil
}

// Resolve is the manual remediation hook for operators.
func (s *serviceImpl) Resolve(ctx context.Context, tenantID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".compensation.Resolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByFields(model.TableName,
		[]string{model.FieldTenantID, model.FieldID, model.FieldStatus},
		tenantID, id, model.StatusPending)

	affected, err := s.repo.Update(ctx, map[string]any{
		model.FieldStatus:    model.StatusResolved,
		model.FieldUpdatedAt: timezone.Now().UTC(),
	}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve compensation job")

		return fmt.Errorf("failed to resolve compensation job: %w", err)
	}

	if affected == 0 {
		return failure.NotFound("pending compensation job not found") // nolint:wrapcheck
	}

	return nil
}
