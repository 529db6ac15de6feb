package dto

import (
	"meetflow/internal/domains/booking/model"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	"time"
)

type CustomerRequest struct {
	Email   string `json:"email"   validate:"required,email,max=320"`
	Name    string `json:"name"    validate:"omitempty,max=255"`
	Company string `json:"company" validate:"omitempty,max=255"`
}

type CreateHoldRequest struct {
	SalespersonID string          `json:"salesperson_id" validate:"required,uuid"`
	StartAt       string          `json:"start_at"       validate:"required"`
	EndAt         string          `json:"end_at"         validate:"required"`
	Customer      CustomerRequest `json:"customer"       validate:"required"`
}

// Window parses the requested slot into UTC instants.
func (r *CreateHoldRequest) Window() (time.Time, time.Time, error) {
	return parseWindow(r.StartAt, r.EndAt)
}

type HoldResponse struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	StartAt       string `json:"start_at"`
	EndAt         string `json:"end_at"`
	HoldExpiresAt string `json:"hold_expires_at"`
}

func (r *HoldResponse) FromModel(booking model.Booking, hold model.Hold) {
	r.BookingID = booking.ID
	r.Status = booking.Status
	r.StartAt = booking.StartAt.UTC().Format(constant.DateFormat)
	r.EndAt = booking.EndAt.UTC().Format(constant.DateFormat)

	if !hold.ExpiresAt.IsZero() {
		r.HoldExpiresAt = hold.ExpiresAt.UTC().Format(constant.DateFormat)
	}
}

type VerifyEmailRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type VerificationResponse struct {
	Status string `json:"status"`
	// Token is only echoed back when the calendar provider runs in mock mode.
	Token string `json:"token,omitempty"`
}

type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

type CancelRequest struct {
	Token string `json:"token" validate:"required"`
}

type RescheduleRequest struct {
	Token      string `json:"token"        validate:"required"`
	NewStartAt string `json:"new_start_at" validate:"required"`
	NewEndAt   string `json:"new_end_at"   validate:"required"`
}

func (r *RescheduleRequest) Window() (time.Time, time.Time, error) {
	return parseWindow(r.NewStartAt, r.NewEndAt)
}

type BookingResponse struct {
	ID                       string `json:"id"`
	SalespersonID            string `json:"salesperson_id"`
	CustomerID               string `json:"customer_id"`
	Status                   string `json:"status"`
	StartAt                  string `json:"start_at"`
	EndAt                    string `json:"end_at"`
	CustomerNotifyRequired   bool   `json:"customer_notify_required"`
	CustomerReinviteRequired bool   `json:"customer_reinvite_required"`
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.SalespersonID = m.SalespersonID
	r.CustomerID = m.CustomerID
	r.Status = m.Status
	r.StartAt = m.StartAt.UTC().Format(constant.DateFormat)
	r.EndAt = m.EndAt.UTC().Format(constant.DateFormat)
	r.CustomerNotifyRequired = m.CustomerNotifyRequired
	r.CustomerReinviteRequired = m.CustomerReinviteRequired
}

type StatusResponse struct {
	Status    string `json:"status"`
	BookingID string `json:"booking_id,omitempty"`
}

const (
	AttendanceAttended = "attended"
	AttendanceNoShow   = "no_show"
)

type AttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=attended no_show"`
}

type IssueTokenRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Purpose   string `json:"purpose"    validate:"required,oneof=cancel reschedule"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type Slot struct {
	StartAtUTC string `json:"start_at_utc"`
	EndAtUTC   string `json:"end_at_utc"`
}

type AvailabilityResponse struct {
	SalespersonID string `json:"salesperson_id"`
	Date          string `json:"date"`
	Slots         []Slot `json:"slots"`
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("start must be an RFC3339 timestamp") // nolint:wrapcheck
	}

	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("end must be an RFC3339 timestamp") // nolint:wrapcheck
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("end must be after start") // nolint:wrapcheck
	}

	return start.UTC(), end.UTC(), nil
}
