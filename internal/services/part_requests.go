// part_requests.go
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
	"strings"

	"github.com/localnerve/tevor-api/internal/cache"
	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// PartInput is one part asked for by a job
type PartInput struct {
	StockID   string `json:"stockid"`
	StockDesc string `json:"stockDesc,omitempty"`
	Qty       int64  `json:"qty"`
}

// PartRequestRegistry owns part request records and their status
type PartRequestRegistry struct {
	db      *gorm.DB
	cache   *cache.Cache[string, models.PartRequest]
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewPartRequestRegistry creates a registry with its own lookup cache
func NewPartRequestRegistry(db *gorm.DB, cacheSize int, log zerolog.Logger, m *metrics.Metrics) *PartRequestRegistry {
	return &PartRequestRegistry{
		db:      db,
		cache:   cache.New[string, models.PartRequest](cacheSize),
		log:     log.With().Str("component", "partrequest").Logger(),
		metrics: m,
	}
}

// AddRequest persists a new open request. Callers validate first, so a
// failed precondition here is a programming error reported as Validation.
func (r *PartRequestRegistry) AddRequest(ctx context.Context, actorID, jobID string, in PartInput) (*models.PartRequest, error) {
	if strings.TrimSpace(jobID) == "" || strings.TrimSpace(in.StockID) == "" {
		return nil, types.Validation("jobid and stockid are required for a part request")
	}
	if in.Qty <= 0 {
		return nil, types.Validation("Requested quantity must be greater than zero")
	}

	prq := models.PartRequest{
		PrqID:      RandomID(PrefixRequest),
		JobID:      jobID,
		StockID:    in.StockID,
		StockDesc:  in.StockDesc,
		ReqQty:     in.Qty,
		Status:     models.PRStatusNew,
		CreatedBy:  actorID,
		ModifiedBy: actorID,
	}
	gen := r.cache.Generation()
	if err := r.db.WithContext(ctx).Create(&prq).Error; err != nil {
		return nil, err
	}

	r.cache.SetSince(gen, prq.PrqID, prq)
	r.metrics.PartRequest("add")
	return &prq, nil
}

// CancelRequest closes an open request of the job in one conditional update
// and returns it as cancelled. A request that is missing, belongs to another
// job or is already closed yields NotFound and nothing is written.
func (r *PartRequestRegistry) CancelRequest(ctx context.Context, actorID, jobID, prqID string) (*models.PartRequest, error) {
	result := r.db.WithContext(ctx).Model(&models.PartRequest{}).
		Where("jobid = ? AND prqid = ? AND closed = ?", jobID, prqID, false).
		Updates(map[string]any{
			"status":      models.PRStatusCancelled,
			"closed":      true,
			"modified_by": actorID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, types.NotFound("Part request %s not found", prqID)
	}

	r.metrics.PartRequest("cancel")
	r.cache.Delete(prqID)
	r.log.Info().Str("jobid", jobID).Str("prqid", prqID).Str("actor", actorID).Msg("part request cancelled")
	return r.FindByID(ctx, prqID)
}

// FindByID returns a request in any state
func (r *PartRequestRegistry) FindByID(ctx context.Context, prqID string) (*models.PartRequest, error) {
	if prq, ok := r.cache.Get(prqID); ok {
		return &prq, nil
	}
	gen := r.cache.Generation()

	var prq models.PartRequest
	err := quiet(r.db).WithContext(ctx).
		Clauses(hints.Comment("select", "partrequest_find")).
		Where("prqid = ?", prqID).
		First(&prq).Error
	if err != nil {
		if isNotFound(err) {
			return nil, types.NotFound("Part request %s not found", prqID)
		}
		return nil, err
	}

	r.cache.SetSince(gen, prqID, prq)
	return &prq, nil
}

// ListOpen returns every request not yet closed, most recently modified first
func (r *PartRequestRegistry) ListOpen(ctx context.Context) ([]models.PartRequest, error) {
	requests := []models.PartRequest{}
	err := r.db.WithContext(ctx).
		Clauses(hints.Comment("select", "partrequest_open")).
		Where("closed = ?", false).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&requests).Error
	return requests, err
}

// ListByJob returns the requests ever raised by a job, oldest first
func (r *PartRequestRegistry) ListByJob(ctx context.Context, jobID string) ([]models.PartRequest, error) {
	requests := []models.PartRequest{}
	err := r.db.WithContext(ctx).
		Where("jobid = ?", jobID).
		Order("id").
		Find(&requests).Error
	return requests, err
}
