package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	AuditTableName    = "audit_logs"
	AuditEntityName   = "audit_log"
	TrackingTableName = "tracking_events"
	TrackingEntity    = "tracking_event"

	FieldID        = "id"
	FieldTenantID  = "tenant_id"
	FieldBookingID = "booking_id"
	FieldEntityID  = "entity_id"
)

const (
	EntityBooking    = "booking"
	EntityWebhookJob = "webhook_job"
)

const (
	ActionBookingCanceledByWebhook = "booking_canceled_by_webhook"
	ActionBookingMovedByWebhook    = "booking_moved_by_webhook"
	ActionBookingMoveConflict      = "booking_move_conflict"
	ActionWebhookJobStatus         = "webhook_job_status"
	ActionAttendanceRecorded       = "attendance_recorded"
	ActionBookingCanceled          = "booking_canceled"
	ActionBookingRescheduled       = "booking_rescheduled"
	ActionCompensationRecorded     = "compensation_recorded"
)

const (
	TrackingEventDeletedBySales = "event_deleted_by_sales"
	TrackingEventMovedBySales   = "event_moved_by_sales"
	TrackingEventMoveConflict   = "event_move_conflict"
	TrackingAttended            = "attended"
	TrackingNoShow              = "no_show"
)

// AuditLog is append-only.
type AuditLog struct {
	ID         string         `db:"id"`
	TenantID   string         `db:"tenant_id"`
	ActorType  string         `db:"actor_type"`
	ActorID    string         `db:"actor_id"`
	Action     string         `db:"action"`
	EntityType string         `db:"entity_type"`
	EntityID   string         `db:"entity_id"`
	Meta       types.JSONText `db:"meta"`
	CreatedAt  time.Time      `db:"created_at"`
}

// TrackingEvent is append-only.
type TrackingEvent struct {
	ID         string         `db:"id"`
	TenantID   string         `db:"tenant_id"`
	BookingID  string         `db:"booking_id"`
	Type       string         `db:"type"`
	Meta       types.JSONText `db:"meta"`
	OccurredAt time.Time      `db:"occurred_at"`
}

// Entry is what callers hand to the recorder; ids and timestamps are filled in on write.
type Entry struct {
	TenantID   string
	ActorType  string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Meta       map[string]any
}
