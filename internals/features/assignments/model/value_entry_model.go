package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValueEntryModel is one (assignment, field) answer. field_key is a soft
// reference to the template's fields; rows whose field was later deleted
// are tolerated, not purged. Fan-out inserts rows with id=0 and backfills
// ids through the allocator afterwards.
type ValueEntryModel struct {
	DocID        string    `gorm:"column:doc_id;primaryKey;type:uuid"`
	ID           int64     `gorm:"column:id"`
	AssignmentID int64     `gorm:"column:assignment_id;not null"`
	FieldKey     string    `gorm:"column:field_key;not null"`
	Value        string    `gorm:"column:value"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (ValueEntryModel) TableName() string { return "values_kv" }

func (m *ValueEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.DocID == "" {
		m.DocID = uuid.NewString()
	}
	return nil
}
