package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment submission states. draft is editable by the owning district;
// sent is read-only until an admin unlocks it. There are no other states.
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
)

// AssignmentModel binds one published template to one district user.
// (template_id, district_user_id) is unique: a district holds at most one
// assignment per template.
type AssignmentModel struct {
	DocID          string     `gorm:"column:doc_id;primaryKey;type:uuid"`
	ID             int64      `gorm:"column:id"`
	TemplateID     int64      `gorm:"column:template_id;not null"`
	DistrictUserID int64      `gorm:"column:district_user_id;not null"`
	Status         string     `gorm:"column:status;not null;default:draft"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (AssignmentModel) TableName() string { return "assignments" }

func (m *AssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.DocID == "" {
		m.DocID = uuid.NewString()
	}
	return nil
}
