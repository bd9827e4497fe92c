// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mytheresa/category-service/app/config"
	"github.com/mytheresa/category-service/app/database"
)

// Open returns a private in-memory database closed at the end of the test.
// The pool is limited to one connection so every query sees the same memory.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver:       config.DriverSQLite,
		URL:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return db
}
