// Package operator serves the internal surface used by sales tooling and notification mails.
package operator

import (
	"meetflow/infras/otel"
	"meetflow/internal/domains/booking/model/dto"
	bookingService "meetflow/internal/domains/booking/service"
	compensationModel "meetflow/internal/domains/compensation/model"
	compensationService "meetflow/internal/domains/compensation/service"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/validator"
	"meetflow/transport/http/middleware"
	"meetflow/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const queryParamStatus = "status"

type Handler struct {
	bookings      bookingService.Booking
	compensations compensationService.Compensation
	otel          otel.Otel
}

func New(bookings bookingService.Booking, compensations compensationService.Compensation, otel otel.Otel) Handler {
	return Handler{
		bookings:      bookings,
		compensations: compensations,
		otel:          otel,
	}
}

func (handler *Handler) Router(router chi.Router, auth middleware.Auth) {
	router.Route("/internal", func(routerGroup chi.Router) {
		routerGroup.Use(auth.APIKey, auth.InternalTenant)

		routerGroup.Post("/attendance/{"+constant.RequestParamBookingID+"}", handler.RecordAttendance)
		routerGroup.Post("/tokens", handler.IssueToken)
		routerGroup.Get("/compensations", handler.ListCompensations)
		routerGroup.Post("/compensations/{"+constant.RequestParamID+"}/resolve", handler.ResolveCompensation)
	})
}

// RecordAttendance marks a confirmed meeting as attended or no-show.
// @Summary Record attendance
// @Tags Internal
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param request body dto.AttendanceRequest true "Attendance"
// @Success 200 {object} response.Data[dto.StatusResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/internal/attendance/{bookingId} [post]
// @Security ApiKeyAuth
func (handler *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordAttendance")
	defer scope.End()

	req := dto.AttendanceRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookingID := chi.URLParam(r, constant.RequestParamBookingID)
	if err := validator.ValidateVar(bookingID, "uuid"); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.RecordAttendance(ctx, middleware.TenantID(ctx), bookingID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to record attendance")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// IssueToken mints a cancel or reschedule capability for a confirmed booking.
// @Summary Issue capability token
// @Tags Internal
// @Accept json
// @Produce json
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param request body dto.IssueTokenRequest true "Token request"
// @Success 201 {object} response.Data[dto.TokenResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/internal/tokens [post]
// @Security ApiKeyAuth
func (handler *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".IssueToken")
	defer scope.End()

	req := dto.IssueTokenRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.IssueToken(ctx, middleware.TenantID(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to issue token")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// ListCompensations pages through sagas needing manual remediation.
// @Summary List compensation jobs
// @Tags Internal
// @Produce json
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (pending, resolved)"
// @Success 200 {object} response.Data[any]
// @Router /v1/internal/compensations [get]
// @Security ApiKeyAuth
func (handler *Handler) ListCompensations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ListCompensations")
	defer scope.End()

	params := gDto.QueryParams{}
	params.FromRequest(r, true)

	if err := params.Check(compensationModel.FieldCreatedAt, compensationModel.FieldStatus); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.compensations.List(ctx, middleware.TenantID(ctx), params, r.URL.Query().Get(queryParamStatus))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list compensation jobs")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ResolveCompensation closes a compensation job after manual cleanup.
// @Summary Resolve compensation job
// @Tags Internal
// @Produce json
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Compensation job ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/internal/compensations/{id}/resolve [post]
// @Security ApiKeyAuth
func (handler *Handler) ResolveCompensation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ResolveCompensation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	if err := validator.ValidateVar(id, "uuid"); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err := handler.compensations.Resolve(ctx, middleware.TenantID(ctx), id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("compensation_id", id).Msg("failed to resolve compensation job")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Compensation job resolved")
}
