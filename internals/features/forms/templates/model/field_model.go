package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Field input types. Anything else is coerced to text at the boundary.
const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeNumber   = "number"
	FieldTypeDate     = "date"
	FieldTypeSelect   = "select"
)

var validFieldTypes = map[string]bool{
	FieldTypeText:     true,
	FieldTypeTextarea: true,
	FieldTypeNumber:   true,
	FieldTypeDate:     true,
	FieldTypeSelect:   true,
}

func ValidFieldType(t string) bool { return validFieldTypes[t] }

// FieldModel is one input definition within a template. FieldKey is derived
// from the label once, unique per template, and never regenerated; value
// rows join on it by string equality.
type FieldModel struct {
	DocID      string         `gorm:"column:doc_id;primaryKey;type:uuid"`
	ID         int64          `gorm:"column:id"`
	TemplateID int64          `gorm:"column:template_id;not null"`
	FieldKey   string         `gorm:"column:field_key;not null"`
	Label      string         `gorm:"column:label;not null"`
	Type       string         `gorm:"column:type;not null"`
	Required   bool           `gorm:"column:required;not null;default:false"`
	Options    datatypes.JSON `gorm:"column:options"`
	OrderIndex int            `gorm:"column:order_index;not null;default:0"`
}

func (FieldModel) TableName() string { return "fields" }

func (m *FieldModel) BeforeCreate(tx *gorm.DB) error {
	if m.DocID == "" {
		m.DocID = uuid.NewString()
	}
	return nil
}
