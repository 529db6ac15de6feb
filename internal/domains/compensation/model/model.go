package model

import (
	"meetflow/shared/model"
)

const (
	TableName  = "compensation_jobs"
	EntityName = "compensation_job"

	FieldID        = "id"
	FieldTenantID  = "tenant_id"
	FieldBookingID = "booking_id"
	FieldStatus    = "status"
	FieldUpdatedAt = "updated_at"
	FieldCreatedAt = "created_at"
)

const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

const (
	// ReasonCalendarFailedAfterMeeting: the video meeting exists but the calendar event could not be created.
	ReasonCalendarFailedAfterMeeting = "calendar_failed_after_meeting"
	// ReasonPersistFailedAfterProviders: both provider artifacts exist but the booking was not confirmed.
	ReasonPersistFailedAfterProviders = "persist_failed_after_providers"
	// ReasonProviderMoveConflict: the organizer moved the event onto a slot another live booking holds,
	// so the local window still shows the old time.
	ReasonProviderMoveConflict = "provider_move_conflict"
	// ReasonHoldExpiredDuringSaga: both provider artifacts exist but the hold ran out before the booking was confirmed.
	ReasonHoldExpiredDuringSaga = "hold_expired_during_saga"
)

// Job is a saga that partially succeeded. Nothing in the service resolves it automatically.
type Job struct {
	ID        string `db:"id"`
	TenantID  string `db:"tenant_id"`
	BookingID string `db:"booking_id"`
	Reason    string `db:"reason"`
	Detail    string `db:"detail"`
	Status    string `db:"status"`
	model.Metadata
}
