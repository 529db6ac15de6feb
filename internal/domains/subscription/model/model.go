package model

import (
	"meetflow/shared/model"
	"time"
)

const (
	TableName  = "graph_subscriptions"
	EntityName = "graph_subscription"

	FieldID             = "id"
	FieldTenantID       = "tenant_id"
	FieldSalespersonID  = "salesperson_id"
	FieldSubscriptionID = "subscription_id"
	FieldExpiresAt      = "expires_at"
	FieldUpdatedAt      = "updated_at"
)

// Subscription is the provider push subscription watching one salesperson's calendar.
type Subscription struct {
	ID             string    `db:"id"`
	TenantID       string    `db:"tenant_id"`
	SalespersonID  string    `db:"salesperson_id"`
	SubscriptionID string    `db:"subscription_id"`
	Resource       string    `db:"resource"`
	ExpiresAt      time.Time `db:"expires_at"`
	model.Metadata
}

// Due reports whether the subscription lapses before cutoff and must be renewed.
func (s Subscription) Due(cutoff time.Time) bool {
	return s.ExpiresAt.Before(cutoff)
}
