package versions

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mytheresa/category-service/migrations"
)

// Table shapes as of revision c54f680d46f8. Later revisions change the
// tables; these structs stay as they are.
type userC54f680d46f8 struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"size:255;not null;uniqueIndex"`
	FullName       *string   `gorm:"size:255"`
	HashedPassword string    `gorm:"not null"`
	IsActive       bool      `gorm:"not null;default:true"`
	IsSuperuser    bool      `gorm:"not null;default:false"`
}

func (userC54f680d46f8) TableName() string { return "user" }

type categoryC54f680d46f8 struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Description *string   `gorm:"size:255"`
}

func (categoryC54f680d46f8) TableName() string { return "category" }

func initialSchema() migrations.Migration {
	return migrations.Migration{
		Revision:     "c54f680d46f8",
		DownRevision: "",
		Message:      "Create user and category tables",
		Upgrade: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&userC54f680d46f8{}, &categoryC54f680d46f8{})
		},
		Downgrade: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&categoryC54f680d46f8{}, &userC54f680d46f8{})
		},
	}
}
