// ids.go
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
	"fmt"

	"github.com/google/uuid"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Identifier namespaces, prefixes and widths
const (
	SeqJob  = "job"
	SeqUser = "user"

	PrefixJob     = "JOB"
	PrefixUser    = "USR"
	PrefixRequest = "PRQ"
	PrefixProblem = "PRB"

	JobIDWidth  = 8
	UserIDWidth = 4
)

// errSequenceRace is returned when another caller created the namespace row first
var errSequenceRace = errors.New("sequence created concurrently")

// IDAllocator hands out durable, strictly increasing numbers per namespace
type IDAllocator struct {
	db *gorm.DB
}

// NewIDAllocator creates an allocator backed by the sequences table
func NewIDAllocator(db *gorm.DB) *IDAllocator {
	return &IDAllocator{db: db}
}

// Allocate increments the namespace counter and returns the new value. The
// first value of a namespace is 1.
func (a *IDAllocator) Allocate(ctx context.Context, namespace string) (int64, error) {
	seq, err := a.allocate(ctx, namespace)
	if errors.Is(err, errSequenceRace) {
		seq, err = a.allocate(ctx, namespace)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s sequence: %w", namespace, err)
	}
	return seq, nil
}

func (a *IDAllocator) allocate(ctx context.Context, namespace string) (int64, error) {
	var seq int64

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Sequence{}).
			Where("seqid = ?", namespace).
			Update("next_seq", gorm.Expr("next_seq + 1"))
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			row := models.Sequence{SeqID: namespace, NextSeq: 1}
			if err := tx.Create(&row).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return errSequenceRace
				}
				return err
			}
			seq = 1
			return nil
		}

		var row models.Sequence
		if err := tx.Clauses(hints.Comment("select", "allocate")).
			Where("seqid = ?", namespace).
			First(&row).Error; err != nil {
			return err
		}
		seq = row.NextSeq
		return nil
	})

	return seq, err
}

// Next allocates from namespace and formats the result with prefix
func (a *IDAllocator) Next(ctx context.Context, namespace, prefix string, width int) (string, error) {
	seq, err := a.Allocate(ctx, namespace)
	if err != nil {
		return "", err
	}
	return FormatID(prefix, seq, width), nil
}

// FormatID renders "PREFIX-000042" with seq zero padded to width digits
func FormatID(prefix string, seq int64, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, seq)
}

// RandomID renders "PREFIX-<uuid>" for ids that need no counter
func RandomID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
