package service

import (
	"context"
	"errors"
	"fmt"
	"meetflow/infras/graph"
	"meetflow/infras/jwt"
	"meetflow/infras/metrics"
	"meetflow/infras/zoom"
	auditModel "meetflow/internal/domains/audit/model"
	"meetflow/internal/domains/booking/model"
	"meetflow/internal/domains/booking/model/dto"
	compensationModel "meetflow/internal/domains/compensation/model"
	customerModel "meetflow/internal/domains/customer/model"
	idempotencyModel "meetflow/internal/domains/idempotency/model"
	tenantModel "meetflow/internal/domains/tenant/model"
	"meetflow/shared"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	"meetflow/shared/logger"
	gModel "meetflow/shared/model"
	"meetflow/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const lockPrefix = "booking"

var errHoldExpired = errors.New("hold expired before the confirmation committed")

func (s *serviceImpl) Confirm(ctx context.Context, tenantID, token, idemKey string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = requireKey(idemKey); err != nil {
		return res, err
	}

	capability, err := s.verifyToken(tenantID, token, jwt.PurposeVerify)
	if err != nil {
		return res, err
	}

	replayed, err := s.ledger.Check(ctx, tenantID, idempotencyModel.ScopeConfirm, idemKey)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	booking, err := s.getBooking(ctx, tenantID, capability.BookingID)
	if err != nil {
		return res, err
	}

	if replayed {
		s.metrics.RecordSaga(metrics.SagaReplayed)
		res.FromModel(booking)

		return res, nil
	}

	if booking.JTI() != capability.JTI {
		return res, failure.Forbidden("token already used") // nolint:wrapcheck
	}

	if booking.Status == model.StatusConfirmed {
		s.recordKey(ctx, tenantID, idempotencyModel.ScopeConfirm, idemKey)
		res.FromModel(booking)

		return res, nil
	}

	if booking.Status != model.StatusPendingVerify {
		return res, failure.Conflict("invalid booking state") // nolint:wrapcheck
	}

	hold, err := s.getHold(ctx, booking.ID)
	if err != nil {
		return res, err
	}

	if hold.ID == "" || hold.Expired(timezone.Now()) {
		return res, s.expireLazily(ctx, booking.ID)
	}

	salesperson, err := s.tenants.GetSalesperson(ctx, tenantID, booking.SalespersonID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	customer, err := s.repos.Customers.Get(ctx, shared.FilterByTenant(tenantID, customerModel.FieldTenantID, booking.CustomerID, customerModel.FieldID, customerModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get customer")

		return res, fmt.Errorf("failed to get customer: %w", err)
	}

	confirmed, err := s.runSaga(ctx, booking, salesperson, customer)
	if err != nil {
		return res, err
	}

	s.recordKey(ctx, tenantID, idempotencyModel.ScopeConfirm, idemKey)
	res.FromModel(confirmed)

	return res, nil
}

// runSaga creates the meeting, then the calendar event, then persists both and
// flips the booking to confirmed under a per-booking advisory lock. The lock only
// wraps the local writes; provider calls are bounded by the provider timeout.
func (s *serviceImpl) runSaga(ctx context.Context, booking model.Booking, salesperson tenantModel.Salesperson, customer customerModel.Customer) (model.Booking, error) {
	providerCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout())
	defer cancel()

	subject := "Booking " + booking.ID

	meeting, err := s.providers.Zoom.CreateMeeting(providerCtx, zoom.MeetingInput{
		Topic:    subject,
		Start:    booking.StartAt,
		Duration: booking.EndAt.Sub(booking.StartAt),
		Timezone: salesperson.Timezone,
	})
	if err != nil {
		s.metrics.RecordSaga(metrics.SagaFailed)
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to create meeting")

		return booking, fmt.Errorf("failed to create meeting: %w", err)
	}

	event, err := s.providers.Graph.CreateEvent(providerCtx, graph.EventInput{
		OrganizerUserID: salesperson.GraphUserID,
		Subject:         subject,
		Start:           booking.StartAt,
		End:             booking.EndAt,
		Timezone:        salesperson.Timezone,
		AttendeeEmail:   customer.Email,
		Body:            "Join URL: " + meeting.JoinURL,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to create calendar event")
		s.compensate(ctx, booking, compensationModel.ReasonCalendarFailedAfterMeeting, err, meeting, "", "")

		return booking, fmt.Errorf("failed to create calendar event: %w", err)
	}

	var (
		result  model.Booking
		raced   bool
		expired bool
		nowTime = timezone.Now().UTC()
	)

	err = s.transactor.WithAdvisoryLock(ctx, shared.BuildCacheKey(lockPrefix, booking.ID), func(tx *sqlx.Tx) error {
		latest, err := s.repos.Bookings.GetTx(ctx, tx, shared.FilterByID(booking.ID, model.FieldID, model.TableName))
		if err != nil {
			return fmt.Errorf("failed to re-read booking: %w", err)
		}

		if latest.Status == model.StatusConfirmed {
			result, raced = latest, true

			return nil
		}

		// the sweeper may have expired the hold while the providers were called
		if latest.Status != model.StatusPendingVerify {
			return failure.Conflict("booking is no longer awaiting confirmation") // nolint:wrapcheck
		}

		hold, err := s.repos.Holds.GetTx(ctx, tx, shared.FilterByID(booking.ID, model.FieldBookingID, model.HoldTableName))
		if err != nil {
			return fmt.Errorf("failed to re-read hold: %w", err)
		}

		// the hold ran out before the sweeper noticed; commit the expiry instead
		if hold.ID == "" || hold.Expired(nowTime) {
			_, err = s.repos.Bookings.UpdateTx(ctx, tx, map[string]any{
				model.FieldStatus:    model.StatusExpired,
				model.FieldUpdatedAt: nowTime,
			}, statusFilter(booking.ID, model.StatusPendingVerify))
			if err != nil {
				return fmt.Errorf("failed to expire booking: %w", err)
			}

			expired = true

			return nil
		}

		err = s.repos.Meetings.InsertTx(ctx, tx, model.Meeting{
			ID:                uuid.NewString(),
			BookingID:         booking.ID,
			Provider:          model.ProviderZoom,
			ProviderMeetingID: meeting.MeetingID,
			JoinURL:           meeting.JoinURL,
			StartURL:          meeting.StartURL,
			CreatedAt:         nowTime,
		})
		if err != nil {
			return fmt.Errorf("failed to insert meeting: %w", err)
		}

		err = s.repos.ProviderEvents.InsertTx(ctx, tx, model.ProviderEvent{
			ID:              uuid.NewString(),
			BookingID:       booking.ID,
			OrganizerUserID: salesperson.GraphUserID,
			EventID:         event.EventID,
			ICalUID:         event.ICalUID,
			ETag:            event.ETag,
			Metadata:        gModel.NewMetadata(nowTime),
		})
		if err != nil {
			return fmt.Errorf("failed to insert provider event: %w", err)
		}

		_, err = s.repos.Bookings.UpdateTx(ctx, tx, map[string]any{
			model.FieldStatus:    model.StatusConfirmed,
			model.FieldVerifyJTI: nil,
			model.FieldUpdatedAt: nowTime,
		}, shared.FilterByID(booking.ID, model.FieldID, model.TableName))
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		result = latest
		result.Status = model.StatusConfirmed
		result.VerifyJTI = nil
		result.UpdatedAt = nowTime

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to persist confirmation")
		s.compensate(ctx, booking, compensationModel.ReasonPersistFailedAfterProviders, err, meeting, salesperson.GraphUserID, event.EventID)

		return booking, err //nolint:wrapcheck
	}

	if expired {
		log.Warn().Str("booking_id", booking.ID).Msg("hold expired during confirmation")
		s.compensate(ctx, booking, compensationModel.ReasonHoldExpiredDuringSaga, errHoldExpired, meeting, salesperson.GraphUserID, event.EventID)

		return booking, failure.Conflict("hold expired") // nolint:wrapcheck
	}

	if raced {
		// another confirm committed first; the artifacts created here are orphans
		fields := map[string]string{"booking_id": booking.ID}
		cleanupCtx := context.WithoutCancel(ctx)

		logger.BestEffort(s.providers.Zoom.DeleteMeeting(cleanupCtx, meeting.MeetingID), "delete duplicate meeting", fields)
		logger.BestEffort(s.providers.Graph.DeleteEvent(cleanupCtx, salesperson.GraphUserID, event.EventID), "delete duplicate calendar event", fields)
		s.metrics.RecordSaga(metrics.SagaReplayed)

		return result, nil
	}

	s.metrics.RecordSaga(metrics.SagaConfirmed)
	log.Info().Str("booking_id", booking.ID).Msg("booking confirmed")

	return result, nil
}

// compensate records the partial failure and removes what the providers already
// created. Cleanup errors are logged and never replace the saga error.
func (s *serviceImpl) compensate(ctx context.Context, booking model.Booking, reason string, cause error, meeting zoom.Meeting, organizerUserID, eventID string) {
	ctx = context.WithoutCancel(ctx)
	fields := map[string]string{"booking_id": booking.ID, "reason": reason}

	logger.BestEffort(s.compensations.Record(ctx, booking.TenantID, booking.ID, reason, cause), "record compensation", fields)
	logger.BestEffort(s.providers.Zoom.DeleteMeeting(ctx, meeting.MeetingID), "delete meeting", fields)

	if eventID != "" {
		logger.BestEffort(s.providers.Graph.DeleteEvent(ctx, organizerUserID, eventID), "delete calendar event", fields)
	}

	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   booking.TenantID,
		ActorType:  constant.ActorTypeSystem,
		ActorID:    "booking-saga",
		Action:     auditModel.ActionCompensationRecorded,
		EntityType: auditModel.EntityBooking,
		EntityID:   booking.ID,
		Meta:       map[string]any{"reason": reason},
	})

	s.metrics.RecordSaga(metrics.SagaCompensated)
}
