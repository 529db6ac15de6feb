package service

import (
	"context"
	"fmt"
	"meetflow/infras/jwt"
	auditModel "meetflow/internal/domains/audit/model"
	"meetflow/internal/domains/booking/model"
	"meetflow/internal/domains/booking/model/dto"
	idempotencyModel "meetflow/internal/domains/idempotency/model"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	gRepo "meetflow/shared/repository"
	"meetflow/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	statusRescheduled = "rescheduled"
)

func (s *serviceImpl) bookingCapability(tenantID, bookingID, token string, purpose jwt.Purpose) error {
	capability, err := s.verifyToken(tenantID, token, purpose)
	if err != nil {
		return err
	}

	if capability.BookingID != bookingID {
		return failure.Forbidden("token was issued for another booking") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) auditCustomer(ctx context.Context, booking model.Booking, action string, meta map[string]any) {
	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   booking.TenantID,
		ActorType:  constant.ActorTypeCustomer,
		ActorID:    booking.CustomerID,
		Action:     action,
		EntityType: auditModel.EntityBooking,
		EntityID:   booking.ID,
		Meta:       meta,
	})
}

func (s *serviceImpl) pastDeadline(booking model.Booking) bool {
	return timezone.Now().After(booking.StartAt.Add(-s.cfg.CancelDeadline()))
}

func (s *serviceImpl) Cancel(ctx context.Context, tenantID, bookingID, token, idemKey string) (res dto.StatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = requireKey(idemKey); err != nil {
		return res, err
	}

	if err = s.bookingCapability(tenantID, bookingID, token, jwt.PurposeCancel); err != nil {
		return res, err
	}

	booking, err := s.getBooking(ctx, tenantID, bookingID)
	if err != nil {
		return res, err
	}

	res = dto.StatusResponse{Status: model.StatusCanceled, BookingID: booking.ID}

	if booking.Status == model.StatusCanceled {
		return res, nil
	}

	if booking.Status != model.StatusConfirmed {
		return res, failure.Conflict("invalid booking state") // nolint:wrapcheck
	}

	if s.pastDeadline(booking) {
		return res, failure.Conflict("cancel deadline passed") // nolint:wrapcheck
	}

	replayed, err := s.ledger.Check(ctx, tenantID, idempotencyModel.ScopeCancel, idemKey)
	if err != nil || replayed {
		return res, err //nolint:wrapcheck
	}

	affected, err := s.repos.Bookings.Update(ctx, map[string]any{
		model.FieldStatus:    model.StatusCanceled,
		model.FieldUpdatedAt: timezone.Now().UTC(),
	}, statusFilter(booking.ID, model.StatusConfirmed))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if affected == 0 {
		// lost the transition to a concurrent cancel or a provider-side change
		latest, err := s.getBooking(ctx, tenantID, bookingID)
		if err != nil {
			return res, err
		}

		if latest.Status != model.StatusCanceled {
			return res, failure.Conflict("invalid booking state") // nolint:wrapcheck
		}

		return res, nil
	}

	s.releaseProviders(ctx, booking)
	s.recordKey(ctx, tenantID, idempotencyModel.ScopeCancel, idemKey)
	s.auditCustomer(ctx, booking, auditModel.ActionBookingCanceled, nil)

	log.Info().Str("booking_id", booking.ID).Msg("booking canceled")

	return res, nil
}

// Reschedule cancels the confirmed booking and opens a fresh hold for the new
// window in one transaction; the new booking goes through verify and confirm again.
func (s *serviceImpl) Reschedule(ctx context.Context, tenantID, bookingID, idemKey string, req dto.RescheduleRequest) (res dto.StatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Reschedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = requireKey(idemKey); err != nil {
		return res, err
	}

	if err = s.bookingCapability(tenantID, bookingID, req.Token, jwt.PurposeReschedule); err != nil {
		return res, err
	}

	start, end, err := req.Window()
	if err != nil {
		return res, err
	}

	booking, err := s.getBooking(ctx, tenantID, bookingID)
	if err != nil {
		return res, err
	}

	replayed, err := s.ledger.Check(ctx, tenantID, idempotencyModel.ScopeReschedule, idemKey)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if replayed {
		// the new hold was created under the same key
		existing, _, err := s.findByKey(ctx, tenantID, idemKey)

		return dto.StatusResponse{Status: statusRescheduled, BookingID: existing.BookingID}, err
	}

	if booking.Status != model.StatusConfirmed {
		return res, failure.Conflict("invalid booking state") // nolint:wrapcheck
	}

	if s.pastDeadline(booking) {
		return res, failure.Conflict("reschedule deadline passed") // nolint:wrapcheck
	}

	now := timezone.Now().UTC()
	if !start.After(now) {
		return res, failure.BadRequestFromString("slot must start in the future") // nolint:wrapcheck
	}

	if _, err = s.tenants.GetSalesperson(ctx, tenantID, booking.SalespersonID); err != nil {
		return res, err //nolint:wrapcheck
	}

	next, hold := newHold(tenantID, booking.SalespersonID, booking.CustomerID, idemKey, start, end, now, s.cfg.HoldTTL())

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		affected, err := s.repos.Bookings.UpdateTx(ctx, tx, map[string]any{
			model.FieldStatus:    model.StatusCanceled,
			model.FieldUpdatedAt: now,
		}, statusFilter(booking.ID, model.StatusConfirmed))
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if affected == 0 {
			return failure.Conflict("invalid booking state") // nolint:wrapcheck
		}

		return s.insertHold(ctx, tx, next, hold)
	})
	if err != nil {
		if gRepo.IsConstraintViolation(err) {
			if gRepo.ViolatedConstraint(err) == model.ConstraintIdempotencyKey {
				return res, failure.Conflict("idempotency key already used") // nolint:wrapcheck
			}

			return res, failure.Conflict("slot already booked") // nolint:wrapcheck
		}

		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to reschedule booking")

		return res, err //nolint:wrapcheck
	}

	s.releaseProviders(ctx, booking)
	s.recordKey(ctx, tenantID, idempotencyModel.ScopeReschedule, idemKey)
	s.auditCustomer(ctx, booking, auditModel.ActionBookingRescheduled, map[string]any{"new_booking_id": next.ID})

	log.Info().Str("booking_id", booking.ID).Str("new_booking_id", next.ID).Msg("booking rescheduled")

	return dto.StatusResponse{Status: statusRescheduled, BookingID: next.ID}, nil
}
