package model

import (
	"meetflow/shared/model"
)

const (
	TableName            = "tenants"
	EntityName           = "tenant"
	SalespersonTableName = "salespersons"
	SalespersonEntity    = "salesperson"

	FieldID          = "id"
	FieldSlug        = "slug"
	FieldStatus      = "status"
	FieldTenantID    = "tenant_id"
	FieldActive      = "active"
	FieldGraphUserID = "graph_user_id"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type Tenant struct {
	ID     string `db:"id"`
	Slug   string `db:"slug"`
	Name   string `db:"name"`
	Status string `db:"status"`
	model.Metadata
}

// Bookable reports whether customers may book against the tenant.
// Pending tenants are still onboarding and already accept bookings.
func (t Tenant) Bookable() bool {
	return t.ID != "" && t.Status != StatusSuspended
}

type Salesperson struct {
	ID          string `db:"id"`
	TenantID    string `db:"tenant_id"`
	GraphUserID string `db:"graph_user_id"`
	DisplayName string `db:"display_name"`
	Timezone    string `db:"timezone"`
	Active      bool   `db:"active"`
	model.Metadata
}
