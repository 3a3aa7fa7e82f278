package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/testutil"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateItem(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock

	item, err := ledger.CreateItem(f.ctx, f.admin.UserID, " scr01 ", "Screen", 5)
	require.NoError(t, err)
	assert.Equal(t, "scr01", item.StockID)
	assert.EqualValues(t, 5, item.BalQty)
	assert.Equal(t, f.admin.UserID, item.CreatedBy)

	_, err = ledger.CreateItem(f.ctx, f.admin.UserID, "scr01", "Again", 1)
	assert.ErrorIs(t, err, types.ErrConstraint)

	_, err = ledger.CreateItem(f.ctx, f.admin.UserID, "  ", "Blank", 1)
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = ledger.CreateItem(f.ctx, f.admin.UserID, "BAT01", "Battery", -1)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestAdjustBalance(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "SCR01", "Screen", 5)

	item, err := ledger.AdjustBalance(f.ctx, f.admin.UserID, "SCR01", -2, AuditRef{Module: "job", RefID: "JOB-00000001"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, item.BalQty)

	// insufficient stock leaves the balance alone
	_, err = ledger.AdjustBalance(f.ctx, f.admin.UserID, "SCR01", -4, AuditRef{})
	assert.ErrorIs(t, err, types.ErrConstraint)

	_, err = ledger.AdjustBalance(f.ctx, f.admin.UserID, "NOPE", 1, AuditRef{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = ledger.AdjustBalance(f.ctx, f.admin.UserID, "SCR01", 0, AuditRef{})
	assert.ErrorIs(t, err, types.ErrValidation)

	found, err := ledger.FindByID(f.ctx, "SCR01", false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, found.BalQty)

	audits, err := ledger.ListAudits(f.ctx, "SCR01")
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.EqualValues(t, 5, audits[0].PrevQty)
	assert.EqualValues(t, -2, audits[0].AdjQty)
	assert.EqualValues(t, 3, audits[0].BalQty)
	assert.Equal(t, models.AuditOut, audits[0].Type)
	assert.Equal(t, "JOB-00000001", audits[0].RefID)
	assert.Equal(t, f.admin.UserID, audits[0].Operator)
}

func TestCreatedItemReachableByItsID(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock

	_, err := ledger.CreateItem(f.ctx, f.admin.UserID, "scr01", "Screen", 5)
	require.NoError(t, err)
	ledger.cache.Delete("scr01")

	found, err := ledger.FindByID(f.ctx, "scr01", false)
	require.NoError(t, err)
	assert.Equal(t, "scr01", found.StockID)

	_, err = ledger.AdjustBalance(f.ctx, f.admin.UserID, "scr01", 1, AuditRef{})
	require.NoError(t, err)

	job := f.newJob(t)
	job, err = f.svc.Jobs.AddPart(f.ctx, f.tech, job.JobID, "scr01", 2)
	require.NoError(t, err)
	require.Len(t, job.Parts, 1)

	prq, err := f.svc.Requests.FindByID(f.ctx, job.Parts[0].PrqID)
	require.NoError(t, err)
	assert.Equal(t, "scr01", prq.StockID)
}

func TestAdjustBalanceEvictsCacheEntry(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "SCR01", "Screen", 5)

	// warm the cache, then adjust
	_, err := ledger.FindByID(f.ctx, "SCR01", false)
	require.NoError(t, err)
	_, err = ledger.AdjustBalance(f.ctx, f.admin.UserID, "SCR01", 3, AuditRef{Type: models.AuditAdjustment})
	require.NoError(t, err)

	_, ok := ledger.cache.Get("SCR01")
	assert.False(t, ok)

	found, err := ledger.FindByID(f.ctx, "SCR01", false)
	require.NoError(t, err)
	assert.EqualValues(t, 8, found.BalQty)
}

func TestLookupRacingDeleteIsNotCached(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "SCR02", "Screen", 1)

	// delete the item after the lookup has read the row, before it is cached
	var armed atomic.Bool
	armed.Store(true)
	require.NoError(t, f.db.Callback().Query().After("gorm:query").
		Register("test:delete_after_read", func(tx *gorm.DB) {
			if tx.Statement.Table == "stock_items" && armed.CompareAndSwap(true, false) {
				require.NoError(t, ledger.DeleteItem(f.ctx, f.admin.UserID, "SCR02"))
			}
		}))

	item, err := ledger.FindByID(f.ctx, "SCR02", false)
	require.NoError(t, err)
	assert.False(t, item.Deleted)
	assert.False(t, armed.Load())

	_, ok := ledger.cache.Get("SCR02")
	assert.False(t, ok)

	_, err = ledger.FindByID(f.ctx, "SCR02", false)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestConcurrentAdjustmentsNeverGoNegative(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "SCR01", "Screen", 10)

	const workers = 25
	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int64
		insufficient atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.AdjustBalance(f.ctx, f.admin.UserID, "SCR01", -1, AuditRef{})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, types.ErrConstraint):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, succeeded.Load())
	assert.EqualValues(t, workers-10, insufficient.Load())

	var item models.StockItem
	require.NoError(t, f.db.Where("stockid = ?", "SCR01").First(&item).Error)
	assert.EqualValues(t, 0, item.BalQty)

	var audits int64
	require.NoError(t, f.db.Model(&models.StockAudit{}).Where("stockid = ?", "SCR01").Count(&audits).Error)
	assert.EqualValues(t, 10, audits)
}

func TestIncludeDeletedDoesNotPoisonCache(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "OLD01", "Discontinued", 1)
	require.NoError(t, ledger.DeleteItem(f.ctx, f.admin.UserID, "OLD01"))

	// a deleted item is visible only when asked for
	item, err := ledger.FindByID(f.ctx, "OLD01", true)
	require.NoError(t, err)
	assert.True(t, item.Deleted)

	_, ok := ledger.cache.Get("OLD01")
	assert.False(t, ok)

	_, err = ledger.FindByID(f.ctx, "OLD01", false)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteItemEvictsCache(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "SCR01", "Screen", 1)

	_, err := ledger.FindByID(f.ctx, "SCR01", false)
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteItem(f.ctx, f.admin.UserID, "SCR01"))
	_, err = ledger.FindByID(f.ctx, "SCR01", false)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// second delete finds nothing to delete
	assert.ErrorIs(t, ledger.DeleteItem(f.ctx, f.admin.UserID, "SCR01"), types.ErrNotFound)
}

func TestUpdateAndListItems(t *testing.T) {
	f := setup(t)
	ledger := f.svc.Stock
	testutil.SeedStock(t, f.db, "SCR02", "Screen B", 1)
	testutil.SeedStock(t, f.db, "SCR01", "Screen A", 1)
	testutil.SeedStock(t, f.db, "OLD01", "Old", 1)
	require.NoError(t, ledger.DeleteItem(f.ctx, f.admin.UserID, "OLD01"))

	item, err := ledger.UpdateItem(f.ctx, f.admin.UserID, "SCR01", "Screen A v2")
	require.NoError(t, err)
	assert.Equal(t, "Screen A v2", item.StockDesc)

	_, err = ledger.UpdateItem(f.ctx, f.admin.UserID, "OLD01", "x")
	assert.ErrorIs(t, err, types.ErrNotFound)

	items, err := ledger.ListItems(f.ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "SCR01", items[0].StockID)
	assert.Equal(t, "SCR02", items[1].StockID)
}
