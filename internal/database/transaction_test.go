package database_test

import (
	"context"
	"errors"
	"testing"

	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"
	"WA-Order-Bot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_CommitAndRollback(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	err := tx.Transaction(ctx, func(ctx context.Context) error {
		return database.Conn(ctx, db).Create(&entities.Category{Name: "Kept", IsActive: true}).Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.Transaction(ctx, func(ctx context.Context) error {
		if err := database.Conn(ctx, db).Create(&entities.Category{Name: "Dropped", IsActive: true}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var names []string
	require.NoError(t, db.Model(&entities.Category{}).Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"Kept"}, names)
}

func TestTransaction_NestedJoinsOuter(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		inner := tx.Transaction(ctx, func(ctx context.Context) error {
			return database.Conn(ctx, db).Create(&entities.Category{Name: "Inner", IsActive: true}).Error
		})
		require.NoError(t, inner)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&entities.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAfterCommit(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	var ran []string
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		return tx.Transaction(ctx, func(ctx context.Context) error {
			database.AfterCommit(ctx, func() { ran = append(ran, "committed") })
			assert.Empty(t, ran)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"committed"}, ran)

	ran = nil
	err = tx.Transaction(ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { ran = append(ran, "rolled back") })
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Empty(t, ran)

	database.AfterCommit(ctx, func() { ran = append(ran, "no tx") })
	assert.Equal(t, []string{"no tx"}, ran)
}

func TestTransaction_NestedRollbackKeepsOuter(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	var ran []string
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		if err := database.Conn(ctx, db).Create(&entities.Category{Name: "Outer", IsActive: true}).Error; err != nil {
			return err
		}
		inner := tx.Transaction(ctx, func(ctx context.Context) error {
			database.AfterCommit(ctx, func() { ran = append(ran, "inner") })
			if err := database.Conn(ctx, db).Create(&entities.Category{Name: "Inner", IsActive: true}).Error; err != nil {
				return err
			}
			return errors.New("inner failed")
		})
		assert.Error(t, inner)
		return database.Conn(ctx, db).Create(&entities.Category{Name: "After", IsActive: true}).Error
	})
	require.NoError(t, err)
	assert.Empty(t, ran)

	var names []string
	require.NoError(t, db.Model(&entities.Category{}).Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"After", "Outer"}, names)
}
