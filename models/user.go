package models

import "github.com/google/uuid"

// User mirrors the user table as shaped by the latest schema revision.
// The service exposes no user endpoints; the model exists for schema checks.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"size:255;not null;uniqueIndex"`
	FullName       *string   `gorm:"size:255"`
	LastName       *string
	HashedPassword string `gorm:"not null"`
	IsActive       bool   `gorm:"not null;default:true"`
	IsSuperuser    bool   `gorm:"not null;default:false"`
}

func (u *User) TableName() string {
	return "user"
}
