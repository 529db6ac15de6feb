package model

import (
	"meetflow/shared/model"
	"time"
)

const (
	TableName              = "bookings"
	EntityName             = "booking"
	HoldTableName          = "holds"
	HoldEntityName         = "hold"
	MeetingTableName       = "meetings"
	MeetingEntityName      = "meeting"
	ProviderEventTableName = "provider_events"
	ProviderEventEntity    = "provider_event"

	FieldID                       = "id"
	FieldTenantID                 = "tenant_id"
	FieldSalespersonID            = "salesperson_id"
	FieldCustomerID               = "customer_id"
	FieldStartAt                  = "start_at"
	FieldEndAt                    = "end_at"
	FieldStatus                   = "status"
	FieldIdempotencyKey           = "idempotency_key"
	FieldVerifyJTI                = "verify_jti"
	FieldCustomerNotifyRequired   = "customer_notify_required"
	FieldCustomerReinviteRequired = "customer_reinvite_required"
	FieldUpdatedAt                = "updated_at"
	FieldBookingID                = "booking_id"
	FieldEventID                  = "event_id"
	FieldETag                     = "etag"
)

const (
	StatusHold          = "hold"
	StatusPendingVerify = "pending_verify"
	StatusConfirmed     = "confirmed"
	StatusCanceled      = "canceled"
	StatusExpired       = "expired"
)

const (
	ConstraintIdempotencyKey = "bookings_tenant_idempotency_key"
	ConstraintNoOverlap      = "bookings_no_overlap"
)

const ProviderZoom = "zoom"

// Booking window timestamps are stored in UTC.
type Booking struct {
	ID                       string    `db:"id"`
	TenantID                 string    `db:"tenant_id"`
	SalespersonID            string    `db:"salesperson_id"`
	CustomerID               string    `db:"customer_id"`
	StartAt                  time.Time `db:"start_at"`
	EndAt                    time.Time `db:"end_at"`
	Status                   string    `db:"status"`
	IdempotencyKey           string    `db:"idempotency_key"`
	VerifyJTI                *string   `db:"verify_jti"`
	CustomerNotifyRequired   bool      `db:"customer_notify_required"`
	CustomerReinviteRequired bool      `db:"customer_reinvite_required"`
	model.Metadata
}

// Awaiting reports whether the booking is still waiting on its hold.
func (b Booking) Awaiting() bool {
	return b.Status == StatusHold || b.Status == StatusPendingVerify
}

func (b Booking) JTI() string {
	if b.VerifyJTI == nil {
		return ""
	}

	return *b.VerifyJTI
}

type Hold struct {
	ID        string    `db:"id"`
	BookingID string    `db:"booking_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (h Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

type Meeting struct {
	ID                string    `db:"id"`
	BookingID         string    `db:"booking_id"`
	Provider          string    `db:"provider"`
	ProviderMeetingID string    `db:"provider_meeting_id"`
	JoinURL           string    `db:"join_url"`
	StartURL          string    `db:"start_url"`
	CreatedAt         time.Time `db:"created_at"`
}

type ProviderEvent struct {
	ID              string `db:"id"`
	BookingID       string `db:"booking_id"`
	OrganizerUserID string `db:"organizer_user_id"`
	EventID         string `db:"event_id"`
	ICalUID         string `db:"ical_uid"`
	ETag            string `db:"etag"`
	model.Metadata
}

// LiveStatuses occupy their slot.
func LiveStatuses() []string {
	return []string{StatusHold, StatusPendingVerify, StatusConfirmed}
}
