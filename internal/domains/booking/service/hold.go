package service

import (
	"context"
	"fmt"
	"meetflow/infras/graph"
	"meetflow/infras/jwt"
	"meetflow/internal/domains/booking/model"
	"meetflow/internal/domains/booking/model/dto"
	customerModel "meetflow/internal/domains/customer/model"
	idempotencyModel "meetflow/internal/domains/idempotency/model"
	"meetflow/shared"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	gModel "meetflow/shared/model"
	gRepo "meetflow/shared/repository"
	"meetflow/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const verificationSent = "sent"

func (s *serviceImpl) CreateHold(ctx context.Context, tenantID, idemKey string, req dto.CreateHoldRequest) (res dto.HoldResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CreateHold")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = requireKey(idemKey); err != nil {
		return res, err
	}

	start, end, err := req.Window()
	if err != nil {
		return res, err
	}

	now := timezone.Now().UTC()
	if !start.After(now) {
		return res, failure.BadRequestFromString("slot must start in the future") // nolint:wrapcheck
	}

	existing, found, err := s.findByKey(ctx, tenantID, idemKey)
	if err != nil || found {
		return existing, err
	}

	salesperson, err := s.tenants.GetSalesperson(ctx, tenantID, req.SalespersonID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	customer, err := s.repos.Customers.Upsert(ctx, customerModel.Customer{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Email:    req.Customer.Email,
		Name:     req.Customer.Name,
		Company:  req.Customer.Company,
		Metadata: gModel.NewMetadata(now),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to upsert customer")

		return res, fmt.Errorf("failed to upsert customer: %w", err)
	}

	booking, hold := newHold(tenantID, salesperson.ID, customer.ID, idemKey, start, end, now, s.cfg.HoldTTL())

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.insertHold(ctx, tx, booking, hold)
	})
	if err != nil {
		if !gRepo.IsConstraintViolation(err) {
			log.Error().Err(err).Msg("failed to create hold")

			return res, fmt.Errorf("failed to create hold: %w", err)
		}

		// a concurrent request with the same key may have won the insert
		existing, found, lookupErr := s.findByKey(ctx, tenantID, idemKey)
		if lookupErr != nil || found {
			return existing, lookupErr
		}

		log.Info().Str("constraint", gRepo.ViolatedConstraint(err)).Str("salesperson_id", salesperson.ID).Msg("slot conflict on hold")

		return res, failure.Conflict("slot already booked") // nolint:wrapcheck
	}

	res.FromModel(booking, hold)

	return res, nil
}

func newHold(tenantID, salespersonID, customerID, idemKey string, start, end, now time.Time, ttl time.Duration) (model.Booking, model.Hold) {
	booking := model.Booking{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		SalespersonID:  salespersonID,
		CustomerID:     customerID,
		StartAt:        start,
		EndAt:          end,
		Status:         model.StatusHold,
		IdempotencyKey: idemKey,
		Metadata:       gModel.NewMetadata(now),
	}

	hold := model.Hold{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	return booking, hold
}

func (s *serviceImpl) insertHold(ctx context.Context, tx *sqlx.Tx, booking model.Booking, hold model.Hold) error {
	if err := s.repos.Bookings.InsertTx(ctx, tx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := s.repos.Holds.InsertTx(ctx, tx, hold); err != nil {
		return fmt.Errorf("failed to insert hold: %w", err)
	}

	return nil
}

// findByKey returns the hold previously created with the caller's key, as it stands now.
func (s *serviceImpl) findByKey(ctx context.Context, tenantID, idemKey string) (res dto.HoldResponse, found bool, err error) {
	booking, err := s.repos.Bookings.Get(ctx, shared.FilterByTenant(tenantID, model.FieldTenantID, idemKey, model.FieldIdempotencyKey, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to look up booking by idempotency key")

		return res, false, fmt.Errorf("failed to look up booking by idempotency key: %w", err)
	}

	if booking.ID == "" {
		return res, false, nil
	}

	hold, err := s.getHold(ctx, booking.ID)
	if err != nil {
		return res, false, err
	}

	res.FromModel(booking, hold)

	return res, true, nil
}

func (s *serviceImpl) SendVerification(ctx context.Context, tenantID, bookingID, idemKey string) (res dto.VerificationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.SendVerification")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = requireKey(idemKey); err != nil {
		return res, err
	}

	res.Status = verificationSent

	replayed, err := s.ledger.Check(ctx, tenantID, idempotencyModel.ScopeVerifyEmail, idemKey)
	if err != nil || replayed {
		return res, err //nolint:wrapcheck
	}

	booking, err := s.getBooking(ctx, tenantID, bookingID)
	if err != nil {
		return res, err
	}

	if !booking.Awaiting() {
		return res, failure.Conflict("invalid booking state") // nolint:wrapcheck
	}

	hold, err := s.getHold(ctx, booking.ID)
	if err != nil {
		return res, err
	}

	if hold.ID == "" {
		return res, failure.NotFound("hold not found") // nolint:wrapcheck
	}

	if hold.Expired(timezone.Now()) {
		return res, s.expireLazily(ctx, booking.ID)
	}

	// the identifier survives resends so an already delivered link stays valid
	jti := booking.JTI()
	if jti == "" {
		jti = uuid.NewString()
	}

	token, err := s.providers.Tokens.Mint(jwt.Capability{
		Purpose:   jwt.PurposeVerify,
		BookingID: booking.ID,
		TenantID:  tenantID,
		JTI:       jti,
		ExpiresAt: hold.ExpiresAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to mint verification token")

		return res, fmt.Errorf("failed to mint verification token: %w", err)
	}

	affected, err := s.repos.Bookings.Update(ctx, map[string]any{
		model.FieldVerifyJTI: jti,
		model.FieldStatus:    model.StatusPendingVerify,
		model.FieldUpdatedAt: timezone.Now().UTC(),
	}, statusFilter(booking.ID, model.StatusHold, model.StatusPendingVerify))
	if err != nil {
		log.Error().Err(err).Msg("failed to mark booking pending verification")

		return res, fmt.Errorf("failed to mark booking pending verification: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("invalid booking state") // nolint:wrapcheck
	}

	customer, err := s.repos.Customers.Get(ctx, shared.FilterByTenant(tenantID, customerModel.FieldTenantID, booking.CustomerID, customerModel.FieldID, customerModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get customer")

		return res, fmt.Errorf("failed to get customer: %w", err)
	}

	err = s.providers.Graph.SendMail(ctx, graph.MailInput{
		To:      customer.Email,
		Subject: "Confirm your meeting",
		Body:    fmt.Sprintf("Confirm your meeting: %s/verify?token=%s", s.cfg.App.BaseURL, token),
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to send verification mail")

		return res, fmt.Errorf("failed to send verification mail: %w", err)
	}

	s.recordKey(ctx, tenantID, idempotencyModel.ScopeVerifyEmail, idemKey)

	if s.cfg.External.Graph.Mock {
		res.Token = token
	}

	return res, nil
}

func (s *serviceImpl) ExpireHolds(ctx context.Context) (expired int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ExpireHolds")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	expired, err = s.repos.Bookings.ExpireHolds(ctx, timezone.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("failed to expire holds")

		return 0, fmt.Errorf("failed to expire holds: %w", err)
	}

	s.metrics.RecordExpired(expired)

	if expired > 0 {
		log.Info().Int64("expired", expired).Msg("expired stale holds")
	}

	return expired, nil
}
