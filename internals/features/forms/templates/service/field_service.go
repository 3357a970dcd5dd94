package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"district_platform/internals/allocator"
	"district_platform/internals/apperr"
	database "district_platform/internals/databases"
	"district_platform/internals/features/forms/templates/dto"
	"district_platform/internals/features/forms/templates/model"
	helper "district_platform/internals/helpers"
)

// AddField appends a field to the template. The field key is slugified from
// the label; a key collision inside the template is retried exactly once
// with a random suffix, after which the unique index has the final word.
func (s *TemplateService) AddField(ctx context.Context, templateID int64, req dto.AddFieldRequest) error {
	if _, err := s.GetTemplateByID(ctx, templateID); err != nil {
		return err
	}

	fieldType := req.Type
	if !model.ValidFieldType(fieldType) {
		fieldType = model.FieldTypeText
	}

	var maxOrder int
	err := s.DB.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(order_index), 0) FROM fields WHERE template_id = ?`, templateID).
		Scan(&maxOrder).Error
	if err != nil {
		return err
	}

	id, err := s.Alloc.Next(ctx, allocator.EntityFields)
	if err != nil {
		return apperr.AllocatorFailure("could not allocate field id", err)
	}

	key := helper.FieldKey(req.Label)
	f := model.FieldModel{
		ID:         id,
		TemplateID: templateID,
		FieldKey:   key,
		Label:      req.Label,
		Type:       fieldType,
		Required:   req.Required,
		Options:    datatypes.JSON([]byte("[]")),
		OrderIndex: maxOrder + 1,
	}

	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		if !database.IsUniqueViolation(err) {
			return err
		}
		// duplicate key -> retry with suffix
		f.DocID = ""
		f.FieldKey = key + "_" + helper.RandomKeySuffix(3)
		if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
			return err
		}
	}

	return s.touchTemplate(ctx, templateID)
}

// GetFieldByID returns the field row, or NotFound.
func (s *TemplateService) GetFieldByID(ctx context.Context, id int64) (*model.FieldModel, error) {
	var f model.FieldModel
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Field not found.")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateField applies a partial patch. The field key is deliberately left
// alone whatever happens to the label. An invalid type in the patch keeps
// the current type.
func (s *TemplateService) UpdateField(ctx context.Context, id int64, req dto.UpdateFieldRequest) error {
	f, err := s.GetFieldByID(ctx, id)
	if err != nil {
		return err
	}

	patch := map[string]any{}
	if req.Label != nil {
		patch["label"] = *req.Label
	}
	if req.Type != nil {
		if model.ValidFieldType(*req.Type) {
			patch["type"] = *req.Type
		}
	}
	if req.Required != nil {
		patch["required"] = *req.Required
	}
	if req.Options != nil {
		raw, err := json.Marshal(*req.Options)
		if err != nil {
			return err
		}
		patch["options"] = datatypes.JSON(raw)
	}

	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(&model.FieldModel{}).
			Where("id = ?", id).Updates(patch).Error; err != nil {
			return err
		}
	}
	return s.touchTemplate(ctx, f.TemplateID)
}

// DeleteField removes the field definition. Existing value rows keyed to it
// are left in place; they simply stop rendering.
func (s *TemplateService) DeleteField(ctx context.Context, id int64) error {
	f, err := s.GetFieldByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Exec(`DELETE FROM fields WHERE id = ?`, id).Error; err != nil {
		return err
	}
	return s.touchTemplate(ctx, f.TemplateID)
}
