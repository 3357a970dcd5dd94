package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateModel is an admin-defined form: an ordered set of fields handed
// out to districts. Created unpublished; publishing is one-way through the
// exposed operations.
type TemplateModel struct {
	DocID     string    `gorm:"column:doc_id;primaryKey;type:uuid"`
	ID        int64     `gorm:"column:id"`
	Name      string    `gorm:"column:name;not null"`
	Published bool      `gorm:"column:published;not null;default:false"`
	CreatedBy *int64    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (TemplateModel) TableName() string { return "templates" }

func (m *TemplateModel) BeforeCreate(tx *gorm.DB) error {
	if m.DocID == "" {
		m.DocID = uuid.NewString()
	}
	return nil
}
