package dto

import (
	"time"

	"district_platform/internals/features/forms/templates/model"
)

type CreateTemplateRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type UpdateTemplateRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type TemplateDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Published  bool      `json:"published"`
	CreatedBy  *int64    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	FieldCount int64     `json:"field_count"`
}

type TemplateDetailDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Published bool       `json:"published"`
	CreatedBy *int64     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Fields    []FieldDTO `json:"fields"`
}

func ToTemplateDetailDTO(t model.TemplateModel, fields []model.FieldModel) TemplateDetailDTO {
	out := TemplateDetailDTO{
		ID:        t.ID,
		Name:      t.Name,
		Published: t.Published,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Fields:    make([]FieldDTO, 0, len(fields)),
	}
	for _, f := range fields {
		out.Fields = append(out.Fields, ToFieldDTO(f))
	}
	return out
}
