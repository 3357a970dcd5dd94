package dto

import (
	"encoding/json"

	"district_platform/internals/features/forms/templates/model"
)

type AddFieldRequest struct {
	Label    string `json:"label" validate:"required,max=200"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// UpdateFieldRequest is a partial patch: nil means "leave as is".
type UpdateFieldRequest struct {
	Label    *string   `json:"label"`
	Type     *string   `json:"type"`
	Required *bool     `json:"required"`
	Options  *[]string `json:"options"`
}

type FieldDTO struct {
	ID         int64    `json:"id"`
	TemplateID int64    `json:"template_id"`
	FieldKey   string   `json:"field_key"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	Options    []string `json:"options"`
	OrderIndex int      `json:"order_index"`
}

func ToFieldDTO(f model.FieldModel) FieldDTO {
	options := []string{}
	if len(f.Options) > 0 {
		// a malformed options blob reads back as no options rather than
		// failing the whole template detail
		_ = json.Unmarshal(f.Options, &options)
		if options == nil {
			options = []string{}
		}
	}
	return FieldDTO{
		ID:         f.ID,
		TemplateID: f.TemplateID,
		FieldKey:   f.FieldKey,
		Label:      f.Label,
		Type:       f.Type,
		Required:   f.Required,
		Options:    options,
		OrderIndex: f.OrderIndex,
	}
}
