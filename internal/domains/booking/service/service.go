package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"meetflow/config"
	"meetflow/infras/graph"
	"meetflow/infras/jwt"
	"meetflow/infras/metrics"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/infras/zoom"
	auditService "meetflow/internal/domains/audit/service"
	"meetflow/internal/domains/booking/model"
	"meetflow/internal/domains/booking/model/dto"
	"meetflow/internal/domains/booking/repository"
	compensationService "meetflow/internal/domains/compensation/service"
	customerRepo "meetflow/internal/domains/customer/repository"
	idempotencyService "meetflow/internal/domains/idempotency/service"
	tenantService "meetflow/internal/domains/tenant/service"
	"meetflow/shared"
	"meetflow/shared/cache"
	gDto "meetflow/shared/dto"
	"meetflow/shared/failure"
	"meetflow/shared/logger"
	"meetflow/shared/timezone"
	"meetflow/shared/validator"

	"github.com/rs/zerolog/log"
)

// Booking is the lifecycle engine: hold, verify, confirm, cancel and reschedule.
type Booking interface {
	GetAvailability(ctx context.Context, tenantID, salespersonID, date string) (dto.AvailabilityResponse, error)
	CreateHold(ctx context.Context, tenantID, idemKey string, req dto.CreateHoldRequest) (dto.HoldResponse, error)
	SendVerification(ctx context.Context, tenantID, bookingID, idemKey string) (dto.VerificationResponse, error)
	Confirm(ctx context.Context, tenantID, token, idemKey string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, tenantID, bookingID, token, idemKey string) (dto.StatusResponse, error)
	Reschedule(ctx context.Context, tenantID, bookingID, idemKey string, req dto.RescheduleRequest) (dto.StatusResponse, error)
	RecordAttendance(ctx context.Context, tenantID, bookingID string, req dto.AttendanceRequest) (dto.StatusResponse, error)
	IssueToken(ctx context.Context, tenantID string, req dto.IssueTokenRequest) (dto.TokenResponse, error)
	ExpireHolds(ctx context.Context) (int64, error)
}

// Repositories groups the stores the engine writes to.
type Repositories struct {
	Bookings       repository.Booking
	Holds          repository.Hold
	Meetings       repository.Meeting
	ProviderEvents repository.ProviderEvent
	Customers      customerRepo.Customer
}

// Providers groups the external collaborators.
type Providers struct {
	Graph  graph.Client
	Zoom   zoom.Client
	Tokens jwt.JWT
}

type availabilityKey struct {
	tenantID      string
	salespersonID string
	date          string
}

type serviceImpl struct {
	repos         Repositories
	providers     Providers
	tenants       tenantService.Tenant
	ledger        idempotencyService.Ledger
	compensations compensationService.Compensation
	recorder      auditService.Recorder
	transactor    postgres.Transactor
	metrics       *metrics.Metrics
	availability  *cache.Local[availabilityKey, []dto.Slot]
	cfg           *config.Config
	otel          otel.Otel
}

func New(
	repos Repositories,
	providers Providers,
	tenants tenantService.Tenant,
	ledger idempotencyService.Ledger,
	compensations compensationService.Compensation,
	recorder auditService.Recorder,
	transactor postgres.Transactor,
	metrics *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repos:         repos,
		providers:     providers,
		tenants:       tenants,
		ledger:        ledger,
		compensations: compensations,
		recorder:      recorder,
		transactor:    transactor,
		metrics:       metrics,
		availability:  cache.NewLocal[availabilityKey, []dto.Slot](cfg.AvailabilityCacheSize(), cfg.AvailabilityCacheTTL()),
		cfg:           cfg,
		otel:          otel,
	}
}

func requireKey(key string) error {
	if err := validator.ValidateVar(key, "idemkey"); err != nil {
		return failure.BadRequestFromString("Idempotency-Key header is required") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) verifyToken(tenantID, token string, purpose jwt.Purpose) (jwt.Capability, error) {
	capability, err := s.providers.Tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return capability, failure.Unauthorized("token expired") // nolint:wrapcheck
		}

		return capability, failure.Unauthorized("invalid token") // nolint:wrapcheck
	}

	if capability.Purpose != purpose {
		return capability, failure.Forbidden("invalid token purpose") // nolint:wrapcheck
	}

	if capability.TenantID != tenantID {
		return capability, failure.Forbidden("token was issued for another tenant") // nolint:wrapcheck
	}

	return capability, nil
}

func (s *serviceImpl) getBooking(ctx context.Context, tenantID, id string) (model.Booking, error) {
	booking, err := s.repos.Bookings.Get(ctx, shared.FilterByTenant(tenantID, model.FieldTenantID, id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == "" {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) getHold(ctx context.Context, bookingID string) (model.Hold, error) {
	hold, err := s.repos.Holds.Get(ctx, shared.FilterByID(bookingID, model.FieldBookingID, model.HoldTableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get hold")

		return hold, fmt.Errorf("failed to get hold: %w", err)
	}

	return hold, nil
}

// statusFilter matches the booking only while it is still in one of statuses,
// turning every update into a conditional transition.
func statusFilter(id string, statuses ...string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: statuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}
}

// expireLazily marks an awaiting booking whose hold ran out as expired and
// reports the conflict to the caller.
func (s *serviceImpl) expireLazily(ctx context.Context, bookingID string) error {
	_, err := s.repos.Bookings.Update(ctx, map[string]any{
		model.FieldStatus:    model.StatusExpired,
		model.FieldUpdatedAt: timezone.Now().UTC(),
	}, statusFilter(bookingID, model.StatusHold, model.StatusPendingVerify))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to expire booking")

		return fmt.Errorf("failed to expire booking: %w", err)
	}

	return failure.Conflict("hold expired") // nolint:wrapcheck
}

// recordKey runs after the side effect already committed, so a ledger failure is
// logged rather than surfaced: the durable booking state already answers a retry.
func (s *serviceImpl) recordKey(ctx context.Context, tenantID, scope, key string) {
	err := s.ledger.Record(context.WithoutCancel(ctx), tenantID, scope, key)
	logger.BestEffort(err, "record idempotency key", map[string]string{"scope": scope, "tenant_id": tenantID})
}

// releaseProviders deletes the meeting and calendar event of a booking that left
// the confirmed state. Failures are logged only.
func (s *serviceImpl) releaseProviders(ctx context.Context, booking model.Booking) {
	ctx = context.WithoutCancel(ctx)
	fields := map[string]string{"booking_id": booking.ID}

	event, err := s.repos.ProviderEvents.Get(ctx, shared.FilterByID(booking.ID, model.FieldBookingID, model.ProviderEventTableName))
	logger.BestEffort(err, "load provider event", fields)

	if event.EventID != "" {
		logger.BestEffort(s.providers.Graph.DeleteEvent(ctx, event.OrganizerUserID, event.EventID), "delete calendar event", fields)
	}

	meeting, err := s.repos.Meetings.Get(ctx, shared.FilterByID(booking.ID, model.FieldBookingID, model.MeetingTableName))
	logger.BestEffort(err, "load meeting", fields)

	if meeting.ProviderMeetingID != "" {
		logger.BestEffort(s.providers.Zoom.DeleteMeeting(ctx, meeting.ProviderMeetingID), "delete meeting", fields)
	}
}
