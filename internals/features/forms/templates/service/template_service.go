package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"district_platform/internals/allocator"
	"district_platform/internals/apperr"
	"district_platform/internals/features/forms/templates/dto"
	"district_platform/internals/features/forms/templates/model"
)

type TemplateService struct {
	DB    *gorm.DB
	Alloc *allocator.Allocator
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{DB: db, Alloc: allocator.New(db)}
}

// CreateTemplate allocates an id and inserts an unpublished template. The
// template collection is repaired first so a corrupted neighbor can never
// poison the id we hand out.
func (s *TemplateService) CreateTemplate(ctx context.Context, name string, createdBy int64) (int64, error) {
	if _, err := s.Alloc.RepairCollection(ctx, allocator.EntityTemplates); err != nil {
		return 0, err
	}

	id, err := s.Alloc.Next(ctx, allocator.EntityTemplates)
	if err != nil {
		return 0, apperr.AllocatorFailure("could not allocate template id", err)
	}

	ts := time.Now().UTC()
	t := model.TemplateModel{
		ID:        id,
		Name:      name,
		Published: false,
		CreatedBy: &createdBy,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return 0, err
	}
	return id, nil
}

// ListTemplates returns every template with its live field count, most
// recently updated first. Bad-id templates are repaired up front rather
// than surfaced to callers.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]dto.TemplateDTO, error) {
	if _, err := s.Alloc.RepairCollection(ctx, allocator.EntityTemplates); err != nil {
		return nil, err
	}

	var rows []dto.TemplateDTO
	err := s.DB.WithContext(ctx).Raw(`
		SELECT t.id, t.name, t.published, t.created_by, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM fields f WHERE f.template_id = t.id) AS field_count
		FROM templates t
		ORDER BY t.updated_at DESC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []dto.TemplateDTO{}
	}
	return rows, nil
}

// GetTemplateByID returns the bare template row, or NotFound.
func (s *TemplateService) GetTemplateByID(ctx context.Context, id int64) (*model.TemplateModel, error) {
	var t model.TemplateModel
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Template not found.")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTemplateDetail returns the template with its fields in display order.
func (s *TemplateService) GetTemplateDetail(ctx context.Context, id int64) (*dto.TemplateDetailDTO, error) {
	t, err := s.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.templateFields(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := dto.ToTemplateDetailDTO(*t, fields)
	return &detail, nil
}

// UpdateTemplate renames the template and bumps updated_at.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id int64, name string) error {
	if _, err := s.GetTemplateByID(ctx, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&model.TemplateModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()}).Error
}

// PublishTemplate flips published to true. One-way: nothing in the exposed
// surface ever unpublishes.
func (s *TemplateService) PublishTemplate(ctx context.Context, id int64) error {
	if _, err := s.GetTemplateByID(ctx, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&model.TemplateModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"published": true, "updated_at": time.Now().UTC()}).Error
}

// DeleteTemplateCascade removes the template and everything hanging off it.
// Deletion order is values -> assignments -> fields -> template so a crash
// mid-sequence never leaves a value row pointing at a live-looking
// assignment whose template is gone; re-running the cascade finishes the
// job.
func (s *TemplateService) DeleteTemplateCascade(ctx context.Context, id int64) error {
	db := s.DB.WithContext(ctx)

	var assignmentIDs []int64
	if err := db.Raw(`SELECT id FROM assignments WHERE template_id = ?`, id).Scan(&assignmentIDs).Error; err != nil {
		return err
	}

	if len(assignmentIDs) > 0 {
		if err := db.Exec(`DELETE FROM values_kv WHERE assignment_id IN ?`, assignmentIDs).Error; err != nil {
			return err
		}
	}
	if err := db.Exec(`DELETE FROM assignments WHERE template_id = ?`, id).Error; err != nil {
		return err
	}
	if err := db.Exec(`DELETE FROM fields WHERE template_id = ?`, id).Error; err != nil {
		return err
	}
	return db.Exec(`DELETE FROM templates WHERE id = ?`, id).Error
}

func (s *TemplateService) templateFields(ctx context.Context, templateID int64) ([]model.FieldModel, error) {
	var fields []model.FieldModel
	err := s.DB.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("order_index ASC, id ASC").
		Find(&fields).Error
	return fields, err
}

func (s *TemplateService) touchTemplate(ctx context.Context, templateID int64) error {
	return s.DB.WithContext(ctx).Model(&model.TemplateModel{}).
		Where("id = ?", templateID).
		Update("updated_at", time.Now().UTC()).Error
}
