package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"gorm.io/gorm"
)

// TestPostgresConstraints runs the schema against a real server so the
// CHECK and unique constraints are exercised outside SQLite.
func TestPostgresConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	dbc, err := testutil.StartDatabase(ctx, "postgres", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Terminate(context.Background()) })

	db, err := database.Connect(dbc.Config, testutil.Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))

	item := &models.StockItem{StockID: "SCR01", StockDesc: "Screen", BalQty: 1, CreatedBy: "t", ModifiedBy: "t"}
	require.NoError(t, db.WithContext(ctx).Create(item).Error)

	err = db.WithContext(ctx).Create(&models.StockItem{StockID: "SCR01", CreatedBy: "t", ModifiedBy: "t"}).Error
	assert.True(t, database.IsUniqueViolation(err), "got %v", err)

	err = db.WithContext(ctx).Model(&models.StockItem{}).Where("stockid = ?", "SCR01").
		Update("bal_qty", gorm.Expr("bal_qty - ?", 5)).Error
	assert.True(t, database.IsCheckViolation(err), "got %v", err)

	// concurrent writers against real row locks
	ids := services.NewIDAllocator(db)
	ledger := services.NewStockLedger(db, 16, testutil.Logger(), nil)

	const writers = 8
	var wg sync.WaitGroup
	seen := make(chan int64, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n, err := ids.Allocate(ctx, "job"); err == nil {
				seen <- n
			}
			_, _ = ledger.AdjustBalance(ctx, "t", "SCR01", -1, services.AuditRef{Module: "job"})
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for n := range seen {
		unique[n] = true
	}
	assert.Len(t, unique, writers)

	item, err = ledger.FindByID(ctx, "SCR01", false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, item.BalQty)
}
