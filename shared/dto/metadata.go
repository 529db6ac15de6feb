package dto

import (
	"meetflow/shared/constant"
	"meetflow/shared/model"
)

type Metadata struct {
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	m.CreatedAt = model.CreatedAt.UTC().Format(constant.DateFormat)
	m.UpdatedAt = model.UpdatedAt.UTC().Format(constant.DateFormat)
}

// Page describes a paginated listing.
type Page struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"total_page"`
}
