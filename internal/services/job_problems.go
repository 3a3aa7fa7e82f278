// job_problems.go
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
	"slices"
	"strings"

	"github.com/localnerve/tevor-api/internal/access"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mutateProblems rewrites the problems list of a job under a row lock.
// The version guard catches writers on databases without row locks.
func (m *JobManager) mutateProblems(ctx context.Context, actor *models.User, jobID string, fn func([]models.Problem) ([]models.Problem, error)) (*models.Job, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := quiet(tx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("jobid = ?", jobID).
			First(&job).Error; err != nil {
			if isNotFound(err) {
				return types.NotFound("Job %s not found", jobID)
			}
			return err
		}
		if job.Cancelled {
			return types.NotFound("Job %s not found", jobID)
		}
		if !access.CanActOnJob(actor, &job) {
			return types.Forbidden("Not authorized to modify job %s", jobID)
		}

		problems, err := fn(slices.Clone([]models.Problem(job.Problems)))
		if err != nil {
			return err
		}

		result := tx.Model(&models.Job{}).
			Where("jobid = ? AND version = ?", jobID, job.Version).
			Updates(map[string]any{
				"problems":    datatypes.JSONSlice[models.Problem](problems),
				"modified_by": actor.UserID,
				"version":     gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.Conflict("Job %s was modified concurrently", jobID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.load(ctx, jobID)
}

// AddProblem appends a problem with a fresh probid
func (m *JobManager) AddProblem(ctx context.Context, actor *models.User, jobID, description string) (*models.Job, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, types.Validation("description is required")
	}

	return m.mutateProblems(ctx, actor, jobID, func(problems []models.Problem) ([]models.Problem, error) {
		return append(problems, models.Problem{
			ProbID:      RandomID(PrefixProblem),
			Description: description,
		}), nil
	})
}

// UpdateProblem replaces the description of probID
func (m *JobManager) UpdateProblem(ctx context.Context, actor *models.User, jobID, probID, description string) (*models.Job, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, types.Validation("description is required")
	}

	return m.mutateProblems(ctx, actor, jobID, func(problems []models.Problem) ([]models.Problem, error) {
		i := slices.IndexFunc(problems, func(p models.Problem) bool { return p.ProbID == probID })
		if i < 0 {
			return nil, types.NotFound("Problem %s not found", probID)
		}
		problems[i].Description = description
		return problems, nil
	})
}

// DeleteProblem removes probID from the list
func (m *JobManager) DeleteProblem(ctx context.Context, actor *models.User, jobID, probID string) (*models.Job, error) {
	return m.mutateProblems(ctx, actor, jobID, func(problems []models.Problem) ([]models.Problem, error) {
		i := slices.IndexFunc(problems, func(p models.Problem) bool { return p.ProbID == probID })
		if i < 0 {
			return nil, types.NotFound("Problem %s not found", probID)
		}
		return slices.Delete(problems, i, i+1), nil
	})
}
