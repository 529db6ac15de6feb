package model

import (
	"meetflow/shared/model"
)

const (
	TableName  = "customers"
	EntityName = "customer"

	FieldID       = "id"
	FieldTenantID = "tenant_id"
	FieldEmail    = "email"
)

type Customer struct {
	ID       string `db:"id"`
	TenantID string `db:"tenant_id"`
	Email    string `db:"email"`
	Name     string `db:"name"`
	Company  string `db:"company"`
	model.Metadata
}
