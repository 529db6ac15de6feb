package dto

import (
	"meetflow/internal/domains/compensation/model"
	"meetflow/shared"
	gDto "meetflow/shared/dto"
)

type JobResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail"`
	Status    string `json:"status"`
	gDto.Metadata
}

func (r *JobResponse) FromModel(m model.Job) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.Reason = m.Reason
	r.Detail = m.Detail
	r.Status = m.Status
	r.Metadata.FromModel(m.Metadata)
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
	gDto.Page
}

func (r *JobsResponse) FromModels(models []model.Job, params gDto.QueryParams, total int) {
	r.Jobs = make([]JobResponse, len(models))
	for i, m := range models {
		r.Jobs[i].FromModel(m)
	}

	r.Page = gDto.Page{
		Page:      params.Page,
		Limit:     params.Limit,
		Total:     total,
		TotalPage: shared.CalculateTotalPage(total, params.Limit),
	}
}
