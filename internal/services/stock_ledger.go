// stock_ledger.go
//
// Tevor repair-shop management API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tevor-api.
// tevor-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tevor-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tevor-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/localnerve/tevor-api/internal/cache"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// AuditRef describes what caused a balance movement
type AuditRef struct {
	Module string // job, stock, purchase
	RefID  string
	Type   string // IN, OUT or ADJUSTMENT, derived from the sign of the delta when empty
}

// StockLedger owns stock items and their balances
type StockLedger struct {
	db      *gorm.DB
	cache   *cache.Cache[string, models.StockItem]
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewStockLedger creates a ledger with its own lookup cache of cacheSize entries
func NewStockLedger(db *gorm.DB, cacheSize int, log zerolog.Logger, m *metrics.Metrics) *StockLedger {
	return &StockLedger{
		db:      db,
		cache:   cache.New[string, models.StockItem](cacheSize),
		log:     log.With().Str("component", "stock").Logger(),
		metrics: m,
	}
}

// FindByID returns the stock item. Only non-deleted items are cached, so a
// lookup with includeDeleted never leaves a deleted item behind for others,
// and a row read before a concurrent delete or adjustment is not cached.
func (s *StockLedger) FindByID(ctx context.Context, stockID string, includeDeleted bool) (*models.StockItem, error) {
	if item, ok := s.cache.Get(stockID); ok {
		return &item, nil
	}
	gen := s.cache.Generation()

	query := quiet(s.db).WithContext(ctx).
		Clauses(hints.Comment("select", "stock_find")).
		Where("stockid = ?", stockID)
	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}

	var item models.StockItem
	if err := query.First(&item).Error; err != nil {
		if isNotFound(err) {
			return nil, types.NotFound("Stock item %s not found", stockID)
		}
		return nil, err
	}

	if !includeDeleted {
		s.cache.SetSince(gen, stockID, item)
	}
	return &item, nil
}

// AdjustBalance adds delta to the balance of a non-deleted item in a single
// conditional update and records a StockAudit row. The balance can never go
// below zero: the update is guarded and the column has a CHECK constraint.
func (s *StockLedger) AdjustBalance(ctx context.Context, actorID, stockID string, delta int64, ref AuditRef) (*models.StockItem, error) {
	if delta == 0 {
		return nil, types.Validation("Adjustment quantity must not be zero")
	}

	var item models.StockItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.StockItem{}).
			Where("stockid = ? AND deleted = ? AND bal_qty + ? >= 0", stockID, false, delta).
			Updates(map[string]any{
				"bal_qty":     gorm.Expr("bal_qty + ?", delta),
				"modified_by": actorID,
			})
		if result.Error != nil {
			if database.IsCheckViolation(result.Error) {
				return types.Constraint("Insufficient stock for %s", stockID)
			}
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.StockItem{}).
				Where("stockid = ? AND deleted = ?", stockID, false).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return types.NotFound("Stock item %s not found", stockID)
			}
			return types.Constraint("Insufficient stock for %s", stockID)
		}

		if err := tx.Where("stockid = ?", stockID).First(&item).Error; err != nil {
			return err
		}

		audit := models.StockAudit{
			AuditID:   RandomID("AUD"),
			RefID:     ref.RefID,
			Module:    ref.Module,
			StockID:   stockID,
			StockDesc: item.StockDesc,
			PrevQty:   item.BalQty - delta,
			AdjQty:    delta,
			BalQty:    item.BalQty,
			Type:      auditType(ref.Type, delta),
			Operator:  actorID,
		}
		if audit.Module == "" {
			audit.Module = string(models.ModuleStock)
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			s.metrics.StockAdjustment("notfound")
		case errors.Is(err, types.ErrConstraint):
			s.metrics.StockAdjustment("insufficient")
		default:
			s.metrics.StockAdjustment("error")
		}
		return nil, err
	}

	s.metrics.StockAdjustment("ok")
	// concurrent adjustments commit in any order, the next read refills
	s.cache.Delete(stockID)

	s.log.Info().
		Str("stockid", stockID).
		Int64("delta", delta).
		Int64("balance", item.BalQty).
		Str("actor", actorID).
		Msg("stock balance adjusted")

	return &item, nil
}

func auditType(typ string, delta int64) string {
	if typ != "" {
		return typ
	}
	if delta > 0 {
		return models.AuditIn
	}
	return models.AuditOut
}

// CreateItem registers a new stock item with an opening balance. The stockid
// is stored as given, apart from surrounding whitespace.
func (s *StockLedger) CreateItem(ctx context.Context, actorID, stockID, desc string, initialQty int64) (*models.StockItem, error) {
	stockID = strings.TrimSpace(stockID)
	if stockID == "" {
		return nil, types.Validation("stockid is required")
	}
	if initialQty < 0 {
		return nil, types.Validation("Initial quantity must not be negative")
	}

	gen := s.cache.Generation()
	item := models.StockItem{
		StockID:    stockID,
		StockDesc:  strings.TrimSpace(desc),
		BalQty:     initialQty,
		CreatedBy:  actorID,
		ModifiedBy: actorID,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, types.Constraint("Stock item %s already exists", stockID)
		}
		return nil, err
	}

	s.cache.SetSince(gen, stockID, item)
	s.log.Info().Str("stockid", stockID).Str("actor", actorID).Msg("stock item created")
	return &item, nil
}

// UpdateItem changes the description of a non-deleted item. Existing part
// requests keep the description they were raised with.
func (s *StockLedger) UpdateItem(ctx context.Context, actorID, stockID, desc string) (*models.StockItem, error) {
	result := s.db.WithContext(ctx).Model(&models.StockItem{}).
		Where("stockid = ? AND deleted = ?", stockID, false).
		Updates(map[string]any{
			"stock_desc":  strings.TrimSpace(desc),
			"modified_by": actorID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, types.NotFound("Stock item %s not found", stockID)
	}

	s.cache.Delete(stockID)
	return s.FindByID(ctx, stockID, false)
}

// DeleteItem soft deletes the item and evicts it from the cache
func (s *StockLedger) DeleteItem(ctx context.Context, actorID, stockID string) error {
	result := s.db.WithContext(ctx).Model(&models.StockItem{}).
		Where("stockid = ? AND deleted = ?", stockID, false).
		Updates(map[string]any{
			"deleted":     true,
			"modified_by": actorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Stock item %s not found", stockID)
	}

	s.cache.Delete(stockID)
	s.log.Info().Str("stockid", stockID).Str("actor", actorID).Msg("stock item deleted")
	return nil
}

// ListItems returns every non-deleted item ordered by stockid
func (s *StockLedger) ListItems(ctx context.Context) ([]models.StockItem, error) {
	items := []models.StockItem{}
	err := s.db.WithContext(ctx).
		Clauses(hints.Comment("select", "stock_list")).
		Where("deleted = ?", false).
		Order("stockid").
		Find(&items).Error
	return items, err
}

// ListAudits returns the balance movements of an item, oldest first
func (s *StockLedger) ListAudits(ctx context.Context, stockID string) ([]models.StockAudit, error) {
	if _, err := s.FindByID(ctx, stockID, true); err != nil {
		return nil, err
	}

	audits := []models.StockAudit{}
	err := s.db.WithContext(ctx).
		Where("stockid = ?", stockID).
		Order("id").
		Find(&audits).Error
	return audits, err
}
