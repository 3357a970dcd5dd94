package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel rows are keyed two ways: doc_id is the storage-native identity,
// id is the allocator-issued surrogate key the rest of the data references.
type UserModel struct {
	DocID        string  `gorm:"column:doc_id;primaryKey;type:uuid"`
	ID           int64   `gorm:"column:id"`
	Username     string  `gorm:"column:username;not null"`
	PasswordHash string  `gorm:"column:password_hash;not null"`
	Role         string  `gorm:"column:role;not null"`
	DistrictName *string `gorm:"column:district_name"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.DocID == "" {
		m.DocID = uuid.NewString()
	}
	return nil
}
