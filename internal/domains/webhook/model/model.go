package model

import (
	"meetflow/shared/dto"
	"meetflow/shared/model"
	"time"
)

const (
	TableName  = "webhook_jobs"
	EntityName = "webhook_job"

	FieldID             = "id"
	FieldSubscriptionID = "subscription_id"
	FieldNotificationID = "notification_id"
	FieldChangeType     = "change_type"
	FieldResourceID     = "resource_id"
	FieldStatus         = "status"
	FieldAttempts       = "attempts"
	FieldLastError      = "last_error"
	FieldUpdatedAt      = "updated_at"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Job is one provider change notification waiting to be applied to local state.
type Job struct {
	ID             string    `db:"id"`
	TenantID       string    `db:"tenant_id"`
	SalespersonID  string    `db:"salesperson_id"`
	SubscriptionID string    `db:"subscription_id"`
	NotificationID *string   `db:"notification_id"`
	ChangeType     string    `db:"change_type"`
	ResourceID     string    `db:"resource_id"`
	Status         string    `db:"status"`
	Attempts       int       `db:"attempts"`
	LastError      *string   `db:"last_error"`
	ReceivedAt     time.Time `db:"received_at"`
	model.Metadata
}

// Terminal jobs are never processed again.
func (j Job) Terminal() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

func InFlightStatuses() []string {
	return []string{StatusPending, StatusProcessing}
}

// StaleFilter matches in-flight jobs nobody has touched since cutoff.
func StaleFilter(cutoff time.Time) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: FieldStatus, Value: InFlightStatuses(), Operator: dto.FilterOperatorIn, Table: TableName},
			dto.Filter{Field: FieldUpdatedAt, Value: cutoff, Operator: dto.FilterOperatorLessEq, Table: TableName},
		},
	}
}
