package public

import (
	"meetflow/infras/otel"
	"meetflow/internal/domains/booking/model/dto"
	"meetflow/internal/domains/booking/service"
	tenantService "meetflow/internal/domains/tenant/service"
	"meetflow/shared/constant"
	"meetflow/shared/validator"
	"meetflow/transport/http/middleware"
	"meetflow/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves the customer-facing booking flow under /public/{tenantSlug}.
type Handler struct {
	bookings service.Booking
	tenants  tenantService.Tenant
	otel     otel.Otel
}

func New(bookings service.Booking, tenants tenantService.Tenant, otel otel.Otel) Handler {
	return Handler{
		bookings: bookings,
		tenants:  tenants,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router, auth middleware.Auth) {
	router.Route("/public/{"+constant.RequestParamTenantSlug+"}", func(routerGroup chi.Router) {
		routerGroup.Use(auth.PublicTenant)

		routerGroup.Get("/salespersons", handler.ListSalespersons)
		routerGroup.Get("/availability", handler.GetAvailability)
		routerGroup.Post("/holds", handler.CreateHold)
		routerGroup.Post("/auth/verify-email", handler.VerifyEmail)
		routerGroup.Post("/confirm", handler.Confirm)
		routerGroup.Post("/bookings/{"+constant.RequestParamID+"}/cancel", handler.Cancel)
		routerGroup.Post("/bookings/{"+constant.RequestParamID+"}/reschedule", handler.Reschedule)
	})
}

// ListSalespersons lists the bookable salespersons of a tenant.
// @Summary List salespersons
// @Tags Public
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Success 200 {object} response.Data[any]
// @Failure 404 {object} response.Error
// @Router /v1/public/{tenantSlug}/salespersons [get]
func (handler *Handler) ListSalespersons(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ListSalespersons")
	defer scope.End()

	res, err := handler.tenants.ListSalespersons(ctx, middleware.TenantID(ctx))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list salespersons")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAvailability returns the free hourly slots of a salesperson on a date.
// @Summary Get availability
// @Description Hourly slots between 09:00 and 17:00 in the salesperson's timezone minus calendar busy time.
// @Tags Public
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Param salesperson query string true "Salesperson ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/public/{tenantSlug}/availability [get]
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	salespersonID := r.URL.Query().Get(constant.RequestParamSalesperson)
	if err := validator.ValidateVar(salespersonID, "required,uuid"); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.GetAvailability(ctx, middleware.TenantID(ctx), salespersonID, r.URL.Query().Get(constant.RequestParamDate))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CreateHold reserves a slot for a customer.
// @Summary Create hold
// @Tags Public
// @Accept json
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body dto.CreateHoldRequest true "Hold request"
// @Success 201 {object} response.Data[dto.HoldResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/public/{tenantSlug}/holds [post]
func (handler *Handler) CreateHold(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateHold")
	defer scope.End()

	req := dto.CreateHoldRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.CreateHold(ctx, middleware.TenantID(ctx), idempotencyKey(r), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create hold")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// VerifyEmail sends the confirmation token for a held booking.
// @Summary Send verification
// @Tags Public
// @Accept json
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body dto.VerifyEmailRequest true "Verification request"
// @Success 200 {object} response.Data[dto.VerificationResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/public/{tenantSlug}/auth/verify-email [post]
func (handler *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".VerifyEmail")
	defer scope.End()

	req := dto.VerifyEmailRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.SendVerification(ctx, middleware.TenantID(ctx), req.BookingID, idempotencyKey(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to send verification")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// Confirm redeems a verification token and books the meeting.
// @Summary Confirm booking
// @Tags Public
// @Accept json
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body dto.ConfirmRequest true "Confirmation token"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/public/{tenantSlug}/confirm [post]
func (handler *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Confirm")
	defer scope.End()

	req := dto.ConfirmRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.Confirm(ctx, middleware.TenantID(ctx), req.Token, idempotencyKey(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// Cancel cancels a confirmed booking with a cancel token.
// @Summary Cancel booking
// @Tags Public
// @Accept json
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Param id path string true "Booking ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body dto.CancelRequest true "Cancel token"
// @Success 200 {object} response.Data[dto.StatusResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/public/{tenantSlug}/bookings/{id}/cancel [post]
func (handler *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Cancel")
	defer scope.End()

	req := dto.CancelRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookingID := chi.URLParam(r, constant.RequestParamID)
	if err := validator.ValidateVar(bookingID, "uuid"); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.Cancel(ctx, middleware.TenantID(ctx), bookingID, req.Token, idempotencyKey(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// Reschedule moves a confirmed booking with a reschedule token.
// @Summary Reschedule booking
// @Tags Public
// @Accept json
// @Produce json
// @Param tenantSlug path string true "Tenant slug"
// @Param id path string true "Booking ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body dto.RescheduleRequest true "Reschedule request"
// @Success 200 {object} response.Data[dto.StatusResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/public/{tenantSlug}/bookings/{id}/reschedule [post]
func (handler *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Reschedule")
	defer scope.End()

	req := dto.RescheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookingID := chi.URLParam(r, constant.RequestParamID)
	if err := validator.ValidateVar(bookingID, "uuid"); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.bookings.Reschedule(ctx, middleware.TenantID(ctx), bookingID, idempotencyKey(r), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to reschedule booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func idempotencyKey(r *http.Request) string {
	return r.Header.Get(constant.RequestHeaderIdempotencyKey)
}
