package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a named grouping with an optional short description.
// It is identified by a system generated UUID that never changes.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Description *string   `gorm:"size:255"`
}

func (c *Category) TableName() string {
	return "category"
}

// BeforeCreate assigns an ID when the caller did not provide one.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
