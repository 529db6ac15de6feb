package model

import "time"

const (
	TableName  = "idempotency_keys"
	EntityName = "idempotency_key"

	FieldID       = "id"
	FieldTenantID = "tenant_id"
	FieldScope    = "scope"
	FieldKey      = "key"
)

// Scopes partition keys so one caller key can drive several operations.
const (
	ScopeVerifyEmail = "verify-email"
	ScopeConfirm     = "confirm"
	ScopeCancel      = "cancel"
	ScopeReschedule  = "reschedule"
)

// Record marks that (tenant, scope, key) already executed. It stores no response.
type Record struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Scope     string    `db:"scope"`
	Key       string    `db:"key"`
	CreatedAt time.Time `db:"created_at"`
}
