package dto

import (
	"meetflow/internal/domains/tenant/model"
)

type SalespersonResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"`
}

func (r *SalespersonResponse) FromModel(m model.Salesperson) {
	r.ID = m.ID
	r.DisplayName = m.DisplayName
	r.Timezone = m.Timezone
}

type SalespersonsResponse struct {
	Salespersons []SalespersonResponse `json:"salespersons"`
}

func (r *SalespersonsResponse) FromModels(models []model.Salesperson) {
	r.Salespersons = make([]SalespersonResponse, 0, len(models))

	for _, m := range models {
		item := SalespersonResponse{}
		item.FromModel(m)
		r.Salespersons = append(r.Salespersons, item)
	}
}
