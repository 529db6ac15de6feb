package service

import (
	"context"
	"fmt"
	"meetflow/infras/jwt"
	auditModel "meetflow/internal/domains/audit/model"
	"meetflow/internal/domains/booking/model"
	"meetflow/internal/domains/booking/model/dto"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	"meetflow/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const statusOK = "ok"

func (s *serviceImpl) RecordAttendance(ctx context.Context, tenantID, bookingID string, req dto.AttendanceRequest) (res dto.StatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.RecordAttendance")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.getBooking(ctx, tenantID, bookingID)
	if err != nil {
		return res, err
	}

	trackingType := auditModel.TrackingAttended
	if req.Status == dto.AttendanceNoShow {
		trackingType = auditModel.TrackingNoShow
	}

	s.recorder.Track(ctx, tenantID, booking.ID, trackingType, nil)
	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   tenantID,
		ActorType:  constant.ActorTypeOperator,
		ActorID:    "internal-api",
		Action:     auditModel.ActionAttendanceRecorded,
		EntityType: auditModel.EntityBooking,
		EntityID:   booking.ID,
		Meta:       map[string]any{"status": req.Status},
	})

	return dto.StatusResponse{Status: statusOK, BookingID: booking.ID}, nil
}

// IssueToken mints a cancel or reschedule link for a confirmed booking. The link
// stays valid until the meeting starts; the deadline is enforced on use.
func (s *serviceImpl) IssueToken(ctx context.Context, tenantID string, req dto.IssueTokenRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.IssueToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	purpose := jwt.Purpose(req.Purpose)
	if purpose != jwt.PurposeCancel && purpose != jwt.PurposeReschedule {
		return res, failure.BadRequestFromString("purpose must be cancel or reschedule") // nolint:wrapcheck
	}

	booking, err := s.getBooking(ctx, tenantID, req.BookingID)
	if err != nil {
		return res, err
	}

	if booking.Status != model.StatusConfirmed {
		return res, failure.Conflict("booking is not confirmed") // nolint:wrapcheck
	}

	if !booking.StartAt.After(timezone.Now()) {
		return res, failure.Conflict("booking already started") // nolint:wrapcheck
	}

	token, err := s.providers.Tokens.Mint(jwt.Capability{
		Purpose:   purpose,
		BookingID: booking.ID,
		TenantID:  tenantID,
		JTI:       uuid.NewString(),
		ExpiresAt: booking.StartAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to mint booking token")

		return res, fmt.Errorf("failed to mint booking token: %w", err)
	}

	return dto.TokenResponse{Token: token, ExpiresAt: booking.StartAt.UTC().Format(constant.DateFormat)}, nil
}
