package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"district_platform/internals/allocator"
	"district_platform/internals/apperr"
	"district_platform/internals/constants"
	database "district_platform/internals/databases"
	assignmentModel "district_platform/internals/features/assignments/model"
	templateModel "district_platform/internals/features/forms/templates/model"
	userModel "district_platform/internals/features/users/user/model"
)

type AssignmentService struct {
	DB    *gorm.DB
	Alloc *allocator.Allocator
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{DB: db, Alloc: allocator.New(db)}
}

// Assign fans a published template out to the given district users. The
// operation is idempotent: re-assigning bumps updated_at on existing
// assignments but never resets their status or overwrites saved values.
func (s *AssignmentService) Assign(ctx context.Context, templateID int64, districtUserIDs []int64) error {
	db := s.DB.WithContext(ctx)

	var tpl templateModel.TemplateModel
	if err := db.Where("id = ?", templateID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Template not found.")
		}
		return err
	}
	if !tpl.Published {
		return apperr.InvalidState("Publish the template before assigning.")
	}

	var fields []templateModel.FieldModel
	if err := db.Where("template_id = ?", templateID).Find(&fields).Error; err != nil {
		return err
	}

	now := time.Now()
	for _, uid := range districtUserIDs {
		var user userModel.UserModel
		err := db.Where("id = ? AND role = ?", uid, constants.RoleDistrict).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// unknown or non-district id: skip silently
			continue
		}
		if err != nil {
			return err
		}

		asg, err := s.ensureAssignment(ctx, db, templateID, uid, now)
		if err != nil {
			return err
		}

		for _, f := range fields {
			// insert-if-absent; existing values stay untouched
			row := assignmentModel.ValueEntryModel{
				AssignmentID: asg.ID,
				FieldKey:     f.FieldKey,
				Value:        "",
				UpdatedAt:    now,
			}
			err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "field_key"}},
				DoNothing: true,
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}

		if err := s.backfillValueIDs(ctx, db, asg.ID); err != nil {
			return err
		}
	}
	return nil
}

// ensureAssignment returns the assignment for (template, district user),
// creating it in draft if absent. A concurrent create losing the race on the
// unique index falls back to re-reading the winner.
func (s *AssignmentService) ensureAssignment(ctx context.Context, db *gorm.DB, templateID, districtUserID int64, now time.Time) (*assignmentModel.AssignmentModel, error) {
	var asg assignmentModel.AssignmentModel
	err := db.Where("template_id = ? AND district_user_id = ?", templateID, districtUserID).First(&asg).Error
	if err == nil {
		if err := db.Model(&assignmentModel.AssignmentModel{}).
			Where("id = ?", asg.ID).
			Update("updated_at", now).Error; err != nil {
			return nil, err
		}
		return &asg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := s.Alloc.Next(ctx, allocator.EntityAssignments)
	if err != nil {
		return nil, apperr.AllocatorFailure("Could not allocate assignment id.", err)
	}
	asg = assignmentModel.AssignmentModel{
		ID:             id,
		TemplateID:     templateID,
		DistrictUserID: districtUserID,
		Status:         assignmentModel.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(&asg).Error; err != nil {
		if database.IsUniqueViolation(err) {
			var existing assignmentModel.AssignmentModel
			if ferr := db.Where("template_id = ? AND district_user_id = ?", templateID, districtUserID).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &asg, nil
}

// backfillValueIDs assigns allocator ids to value rows inserted with id = 0.
// Done after the fan-out inserts so skipped conflicts never burn an id.
func (s *AssignmentService) backfillValueIDs(ctx context.Context, db *gorm.DB, assignmentID int64) error {
	var rows []assignmentModel.ValueEntryModel
	err := db.Where("assignment_id = ? AND (id IS NULL OR id <= 0)", assignmentID).
		Order("doc_id ASC").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		id, err := s.Alloc.Next(ctx, allocator.EntityValues)
		if err != nil {
			return apperr.AllocatorFailure("Could not allocate value id.", err)
		}
		err = db.Model(&assignmentModel.ValueEntryModel{}).
			Where("doc_id = ?", row.DocID).
			Update("id", id).Error
		if err != nil {
			return err
		}
	}
	return nil
}
