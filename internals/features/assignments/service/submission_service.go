package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"district_platform/internals/apperr"
	"district_platform/internals/features/assignments/dto"
	assignmentModel "district_platform/internals/features/assignments/model"
	templateDTO "district_platform/internals/features/forms/templates/dto"
	templateModel "district_platform/internals/features/forms/templates/model"
	userModel "district_platform/internals/features/users/user/model"
)

// ListSubmissions returns every assignment across all districts, newest
// activity first, for the admin dashboard.
func (s *AssignmentService) ListSubmissions(ctx context.Context) ([]dto.SubmissionListItemDTO, error) {
	db := s.DB.WithContext(ctx)

	var items []dto.SubmissionListItemDTO
	err := db.Raw(`
		SELECT a.id,
		       a.status,
		       a.sent_at,
		       a.updated_at,
		       t.name AS template_name,
		       u.username AS district_username,
		       COALESCE(u.district_name, u.username) AS district_name
		FROM assignments a
		JOIN templates t ON t.id = a.template_id
		JOIN users u ON u.id = a.district_user_id
		ORDER BY a.updated_at DESC`).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []dto.SubmissionListItemDTO{}
	}
	return items, nil
}

// GetSubmissionDetail resolves one assignment into ordered label/value rows
// for the admin view. Fields with no saved value render as "".
func (s *AssignmentService) GetSubmissionDetail(ctx context.Context, assignmentID int64) (*dto.SubmissionDetailDTO, error) {
	db := s.DB.WithContext(ctx)

	asg, err := s.getAssignment(db, assignmentID)
	if err != nil {
		return nil, err
	}

	var tpl templateModel.TemplateModel
	if err := db.Where("id = ?", asg.TemplateID).First(&tpl).Error; err != nil {
		return nil, err
	}
	var user userModel.UserModel
	if err := db.Where("id = ?", asg.DistrictUserID).First(&user).Error; err != nil {
		return nil, err
	}

	rows, err := s.valueRows(db, asg)
	if err != nil {
		return nil, err
	}

	return &dto.SubmissionDetailDTO{
		ID:           asg.ID,
		Status:       asg.Status,
		SentAt:       asg.SentAt,
		UpdatedAt:    asg.UpdatedAt,
		TemplateName: tpl.Name,
		DistrictName: districtLabel(user),
		Values:       rows,
	}, nil
}

// Unlock flips a sent assignment back to draft so the district can edit
// again. Unlocking a draft is a harmless no-op rewrite.
func (s *AssignmentService) Unlock(ctx context.Context, assignmentID int64) error {
	db := s.DB.WithContext(ctx)

	if _, err := s.getAssignment(db, assignmentID); err != nil {
		return err
	}
	return db.Model(&assignmentModel.AssignmentModel{}).
		Where("id = ?", assignmentID).
		Updates(map[string]any{
			"status":     assignmentModel.StatusDraft,
			"sent_at":    nil,
			"updated_at": time.Now(),
		}).Error
}

// ListDistrictAssignments returns the caller's own assignments only.
func (s *AssignmentService) ListDistrictAssignments(ctx context.Context, districtUserID int64) ([]dto.DistrictAssignmentListItemDTO, error) {
	db := s.DB.WithContext(ctx)

	var items []dto.DistrictAssignmentListItemDTO
	err := db.Raw(`
		SELECT a.id,
		       a.status,
		       a.sent_at,
		       a.updated_at,
		       t.name AS template_name
		FROM assignments a
		JOIN templates t ON t.id = a.template_id
		WHERE a.district_user_id = ?
		ORDER BY a.updated_at DESC`, districtUserID).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []dto.DistrictAssignmentListItemDTO{}
	}
	return items, nil
}

// GetDistrictAssignmentDetail returns the form definition plus saved values
// for one assignment. An assignment owned by another district reads as not
// found, never as forbidden.
func (s *AssignmentService) GetDistrictAssignmentDetail(ctx context.Context, assignmentID, districtUserID int64) (*dto.DistrictAssignmentDetailDTO, error) {
	db := s.DB.WithContext(ctx)

	asg, err := s.getOwnedAssignment(db, assignmentID, districtUserID)
	if err != nil {
		return nil, err
	}

	var tpl templateModel.TemplateModel
	if err := db.Where("id = ?", asg.TemplateID).First(&tpl).Error; err != nil {
		return nil, err
	}

	fields, err := s.orderedFields(db, asg.TemplateID)
	if err != nil {
		return nil, err
	}
	fieldDTOs := make([]templateDTO.FieldDTO, 0, len(fields))
	for _, f := range fields {
		fieldDTOs = append(fieldDTOs, templateDTO.ToFieldDTO(f))
	}

	var values []assignmentModel.ValueEntryModel
	if err := db.Where("assignment_id = ?", asg.ID).Find(&values).Error; err != nil {
		return nil, err
	}
	kvs := make([]dto.ValueKVDTO, 0, len(values))
	for _, v := range values {
		kvs = append(kvs, dto.ValueKVDTO{FieldKey: v.FieldKey, Value: v.Value})
	}

	return &dto.DistrictAssignmentDetailDTO{
		ID:           asg.ID,
		TemplateName: tpl.Name,
		Status:       asg.Status,
		SentAt:       asg.SentAt,
		UpdatedAt:    asg.UpdatedAt,
		Fields:       fieldDTOs,
		Values:       kvs,
	}, nil
}

// SaveValues upserts the submitted values onto a draft assignment. Field
// membership is not validated on write: keys the template no longer (or
// never) defines are stored all the same, so a district editing while the
// admin reshapes the form never loses data. Stale rows simply stop
// rendering.
func (s *AssignmentService) SaveValues(ctx context.Context, assignmentID, districtUserID int64, values []dto.ValueInput) error {
	db := s.DB.WithContext(ctx)

	asg, err := s.getOwnedAssignment(db, assignmentID, districtUserID)
	if err != nil {
		return err
	}
	if asg.Status == assignmentModel.StatusSent {
		return apperr.InvalidState("Already sent. Ask admin to unlock.")
	}

	now := time.Now()
	for _, v := range values {
		if v.FieldKey == "" {
			continue
		}
		row := assignmentModel.ValueEntryModel{
			AssignmentID: asg.ID,
			FieldKey:     v.FieldKey,
			Value:        v.ValueString(),
			UpdatedAt:    now,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "field_key"}},
			DoUpdates: clause.Assignments(map[string]any{"value": row.Value, "updated_at": now}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}

	if err := s.backfillValueIDs(ctx, db, asg.ID); err != nil {
		return err
	}

	return db.Model(&assignmentModel.AssignmentModel{}).
		Where("id = ?", asg.ID).
		Update("updated_at", now).Error
}

// Send flips a draft to sent after the required-field gate passes and hands
// back the payload the notification email is built from. The flip is durable
// regardless of what the notification sink later does with the payload.
func (s *AssignmentService) Send(ctx context.Context, assignmentID, districtUserID int64) (*dto.SendResultDTO, error) {
	db := s.DB.WithContext(ctx)

	asg, err := s.getOwnedAssignment(db, assignmentID, districtUserID)
	if err != nil {
		return nil, err
	}
	if asg.Status == assignmentModel.StatusSent {
		return nil, apperr.InvalidState("Already sent.")
	}

	fields, err := s.orderedFields(db, asg.TemplateID)
	if err != nil {
		return nil, err
	}
	vmap, err := s.valueMap(db, asg.ID)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range fields {
		if f.Required && vmap[f.FieldKey] == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("Required fields missing: " + strings.Join(missing, ", "))
	}

	now := time.Now()
	err = db.Model(&assignmentModel.AssignmentModel{}).
		Where("id = ?", asg.ID).
		Updates(map[string]any{
			"status":     assignmentModel.StatusSent,
			"sent_at":    now,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}

	var tpl templateModel.TemplateModel
	if err := db.Where("id = ?", asg.TemplateID).First(&tpl).Error; err != nil {
		return nil, err
	}
	var user userModel.UserModel
	if err := db.Where("id = ?", asg.DistrictUserID).First(&user).Error; err != nil {
		return nil, err
	}

	rows := make([]dto.ValueRowDTO, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, dto.ValueRowDTO{FieldKey: f.FieldKey, Label: f.Label, Value: vmap[f.FieldKey]})
	}

	return &dto.SendResultDTO{
		DistrictName: districtLabel(user),
		TemplateName: tpl.Name,
		SentAt:       now,
		Rows:         rows,
	}, nil
}

func (s *AssignmentService) getAssignment(db *gorm.DB, id int64) (*assignmentModel.AssignmentModel, error) {
	var asg assignmentModel.AssignmentModel
	if err := db.Where("id = ?", id).First(&asg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Assignment not found.")
		}
		return nil, err
	}
	return &asg, nil
}

func (s *AssignmentService) getOwnedAssignment(db *gorm.DB, id, districtUserID int64) (*assignmentModel.AssignmentModel, error) {
	var asg assignmentModel.AssignmentModel
	err := db.Where("id = ? AND district_user_id = ?", id, districtUserID).First(&asg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Assignment not found.")
		}
		return nil, err
	}
	return &asg, nil
}

func (s *AssignmentService) orderedFields(db *gorm.DB, templateID int64) ([]templateModel.FieldModel, error) {
	var fields []templateModel.FieldModel
	err := db.Where("template_id = ?", templateID).
		Order("order_index ASC, id ASC").
		Find(&fields).Error
	return fields, err
}

// valueMap returns the saved values keyed by field, trimmed once here so
// the required-field gate, the email payload and the exports all see the
// same rendering.
func (s *AssignmentService) valueMap(db *gorm.DB, assignmentID int64) (map[string]string, error) {
	var values []assignmentModel.ValueEntryModel
	if err := db.Where("assignment_id = ?", assignmentID).Find(&values).Error; err != nil {
		return nil, err
	}
	vmap := make(map[string]string, len(values))
	for _, v := range values {
		vmap[v.FieldKey] = strings.TrimSpace(v.Value)
	}
	return vmap, nil
}

func (s *AssignmentService) valueRows(db *gorm.DB, asg *assignmentModel.AssignmentModel) ([]dto.ValueRowDTO, error) {
	fields, err := s.orderedFields(db, asg.TemplateID)
	if err != nil {
		return nil, err
	}
	vmap, err := s.valueMap(db, asg.ID)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ValueRowDTO, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, dto.ValueRowDTO{FieldKey: f.FieldKey, Label: f.Label, Value: vmap[f.FieldKey]})
	}
	return rows, nil
}

func districtLabel(u userModel.UserModel) string {
	if u.DistrictName != nil && *u.DistrictName != "" {
		return *u.DistrictName
	}
	return u.Username
}
