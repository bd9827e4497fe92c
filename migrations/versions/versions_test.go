package versions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/category-service/app/database/dbtest"
	"github.com/mytheresa/category-service/migrations"
	"github.com/mytheresa/category-service/models"
)

func TestChainIsLinear(t *testing.T) {
	chain, err := Chain()
	require.NoError(t, err)

	assert.Equal(t, []string{"c54f680d46f8"}, chain.Bases())
	assert.Equal(t, []string{"8fdc8a71268b"}, chain.Heads())

	unit, ok := chain.Get("8fdc8a71268b")
	require.True(t, ok)
	assert.Equal(t, "c54f680d46f8", unit.DownRevision)
}

func TestInitialSchema(t *testing.T) {
	ctx := context.Background()
	chain, err := Chain()
	require.NoError(t, err)
	db := dbtest.Open(t)
	runner := migrations.NewRunner(db, chain)

	require.NoError(t, runner.Apply(ctx, "c54f680d46f8"))
	assert.True(t, db.Migrator().HasTable("user"))
	assert.True(t, db.Migrator().HasTable("category"))
	assert.False(t, db.Migrator().HasColumn("user", "last_name"))

	require.NoError(t, runner.Revert(ctx, "c54f680d46f8"))
	assert.False(t, db.Migrator().HasTable("user"))
	assert.False(t, db.Migrator().HasTable("category"))
}

func TestAddUserLastName(t *testing.T) {
	ctx := context.Background()
	chain, err := Chain()
	require.NoError(t, err)
	db := dbtest.Open(t)
	runner := migrations.NewRunner(db, chain)

	err = runner.Apply(ctx, "8fdc8a71268b")
	assert.ErrorIs(t, err, migrations.ErrPredecessorMissing)

	require.NoError(t, runner.Apply(ctx, "c54f680d46f8"))
	require.NoError(t, db.Exec(
		`INSERT INTO "user" (id, email, hashed_password, is_active, is_superuser) VALUES (?, ?, ?, ?, ?)`,
		uuid.New(), "ada@example.com", "hash", true, false,
	).Error)

	require.NoError(t, runner.Apply(ctx, "8fdc8a71268b"))
	assert.True(t, db.Migrator().HasColumn("user", "last_name"))

	// Rows that predate the column stay valid with a NULL last name.
	var existing models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&existing).Error)
	assert.Nil(t, existing.LastName)

	lastName := "Lovelace"
	require.NoError(t, db.Model(&existing).Update("last_name", lastName).Error)

	assert.ErrorIs(t, runner.Apply(ctx, "8fdc8a71268b"), migrations.ErrAlreadyApplied)
	assert.ErrorIs(t, runner.Revert(ctx, "c54f680d46f8"), migrations.ErrDependentApplied)

	require.NoError(t, runner.Revert(ctx, "8fdc8a71268b"))
	assert.False(t, db.Migrator().HasColumn("user", "last_name"))
	assert.True(t, db.Migrator().HasIndex("user", "idx_user_email"), "downgrade keeps the email index")

	require.NoError(t, runner.Apply(ctx, "8fdc8a71268b"), "column must not persist after revert")
	var reloaded models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&reloaded).Error)
	assert.Nil(t, reloaded.LastName, "data written before the revert is gone")
}

func TestUpgradeToHead(t *testing.T) {
	ctx := context.Background()
	chain, err := Chain()
	require.NoError(t, err)
	db := dbtest.Open(t)
	runner := migrations.NewRunner(db, chain)

	done, err := runner.Upgrade(ctx, migrations.TargetHead)
	require.NoError(t, err)
	assert.Equal(t, []string{"c54f680d46f8", "8fdc8a71268b"}, done)

	current, err := runner.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"8fdc8a71268b"}, current)

	// The frozen tables match what the models expect.
	category := models.Category{Name: "Books"}
	require.NoError(t, db.Create(&category).Error)
	assert.NotEqual(t, uuid.Nil, category.ID)
}
