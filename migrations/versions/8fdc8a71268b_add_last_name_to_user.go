package versions

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mytheresa/category-service/migrations"
)

type user8fdc8a71268b struct {
	LastName *string
}

func (user8fdc8a71268b) TableName() string { return "user" }

// addUserLastName adds a nullable column, so existing users stay valid
// without a backfill. Reverting drops the column and its data.
func addUserLastName() migrations.Migration {
	return migrations.Migration{
		Revision:     "8fdc8a71268b",
		DownRevision: "c54f680d46f8",
		Message:      "Add column last_name to User model",
		Upgrade: func(tx *gorm.DB) error {
			return tx.Migrator().AddColumn(&user8fdc8a71268b{}, "LastName")
		},
		Downgrade: func(tx *gorm.DB) error {
			// Plain ALTER TABLE keeps the user indexes intact on SQLite,
			// where the migrator would rebuild the table.
			return tx.Exec("ALTER TABLE ? DROP COLUMN ?",
				clause.Table{Name: "user"}, clause.Column{Name: "last_name"}).Error
		},
	}
}
