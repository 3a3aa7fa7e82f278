// Package testutil provides the databases the test suites run against: an
// in-memory SQLite for package tests and Docker backed servers for
// integration tests and local development.
package testutil

import (
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database that lives as long as t.
// The pool is held to one connection so every query sees the same memory database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// Logger returns a logger that discards everything
func Logger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// SeedUser inserts a user row directly, bypassing the directory service
func SeedUser(t testing.TB, db *gorm.DB, userID, cert string, roles models.Roles) *models.User {
	t.Helper()

	user := &models.User{
		UserID:     userID,
		Name:       "User " + userID,
		ShortName:  userID,
		Roles:      roles,
		Cert:       cert,
		CreatedBy:  "system",
		ModifiedBy: "system",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedStock inserts a stock item row directly, bypassing the ledger
func SeedStock(t testing.TB, db *gorm.DB, stockID, desc string, qty int64) *models.StockItem {
	t.Helper()

	item := &models.StockItem{
		StockID:    stockID,
		StockDesc:  desc,
		BalQty:     qty,
		CreatedBy:  "system",
		ModifiedBy: "system",
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
