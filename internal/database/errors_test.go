package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/testutil"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyDriverErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		unique bool
		check  bool
	}{
		{"nil", nil, false, false},
		{"plain", errors.New("boom"), false, false},
		{"gorm duplicate", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true, false},
		{"gorm check", gorm.ErrCheckConstraintViolated, false, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true, false},
		{"postgres check", &pgconn.PgError{Code: "23514"}, false, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, false},
		{"mysql check", &mysql.MySQLError{Number: 3819}, false, true},
		{"mssql unique", mssql.Error{Number: 2627}, true, false},
		{"mssql check", mssql.Error{Number: 547, Message: "The UPDATE statement conflicted with the CHECK constraint"}, false, true},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: users.cert (2067)"), true, false},
		{"sqlite check", errors.New("constraint failed: CHECK constraint failed: chk_stock_items_bal_qty (275)"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, database.IsUniqueViolation(tt.err))
			assert.Equal(t, tt.check, database.IsCheckViolation(tt.err))
		})
	}
}

func TestSQLiteConstraintsAreClassified(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedStock(t, db, "SCR01", "Screen", 1)

	err := db.Create(&models.StockItem{StockID: "SCR01", CreatedBy: "t", ModifiedBy: "t"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	err = db.Model(&models.StockItem{}).Where("stockid = ?", "SCR01").
		Update("bal_qty", gorm.Expr("bal_qty - ?", 2)).Error
	require.Error(t, err)
	assert.True(t, database.IsCheckViolation(err))
}
