// jobs.go
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
	"slices"
	"strings"
	"time"

	"github.com/localnerve/tevor-api/internal/access"
	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// JobInput carries the descriptive fields of a job
type JobInput struct {
	Client   string     `json:"client"`
	IMEI     string     `json:"imei"`
	JobNo    string     `json:"jobno"`
	Brand    string     `json:"brand"`
	Model    string     `json:"model"`
	Priority string     `json:"priority,omitempty"`
	DateIn   *time.Time `json:"dateIn,omitempty"`
	Problems []string   `json:"problems,omitempty"`
}

// JobManager owns jobs and drives part requests from them
type JobManager struct {
	db       *gorm.DB
	ids      *IDAllocator
	stock    *StockLedger
	requests *PartRequestRegistry
	users    *UserDirectory
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

// NewJobManager wires the job manager to the components it coordinates
func NewJobManager(db *gorm.DB, ids *IDAllocator, stock *StockLedger, requests *PartRequestRegistry, users *UserDirectory, log zerolog.Logger, m *metrics.Metrics) *JobManager {
	return &JobManager{
		db:       db,
		ids:      ids,
		stock:    stock,
		requests: requests,
		users:    users,
		log:      log.With().Str("component", "job").Logger(),
		metrics:  m,
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizePriority(p string) (string, error) {
	switch p = normalize(p); p {
	case "":
		return models.PriorityMedium, nil
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return p, nil
	}
	return "", types.Validation("priority must be one of LOW, MEDIUM or HIGH")
}

func validateJobInput(in JobInput) error {
	if normalize(in.Client) == "" {
		return types.Validation("client is required")
	}
	if normalize(in.Brand) == "" {
		return types.Validation("brand is required")
	}
	if normalize(in.Model) == "" {
		return types.Validation("model is required")
	}
	return nil
}

// load reads a job and its open parts in insertion order
func (m *JobManager) load(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	err := quiet(m.db).WithContext(ctx).
		Clauses(hints.Comment("select", "job_find")).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Where("jobid = ?", jobID).
		First(&job).Error
	if err != nil {
		if isNotFound(err) {
			return nil, types.NotFound("Job %s not found", jobID)
		}
		return nil, err
	}

	fillEmpty(&job)
	return &job, nil
}

func fillEmpty(job *models.Job) {
	if job.Parts == nil {
		job.Parts = []models.JobPart{}
	}
	if job.Problems == nil {
		job.Problems = datatypes.JSONSlice[models.Problem]{}
	}
}

// loadActive reads a job that is not cancelled and that actor may act on.
// Existence is settled before authorization.
func (m *JobManager) loadActive(ctx context.Context, actor *models.User, jobID string) (*models.Job, error) {
	job, err := m.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Cancelled {
		return nil, types.NotFound("Job %s not found", jobID)
	}
	if !access.CanActOnJob(actor, job) {
		return nil, types.Forbidden("Not authorized to modify job %s", jobID)
	}
	return job, nil
}

// loadActiveAdmin is loadActive restricted to job administrators
func (m *JobManager) loadActiveAdmin(ctx context.Context, actor *models.User, jobID string) (*models.Job, error) {
	job, err := m.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Cancelled {
		return nil, types.NotFound("Job %s not found", jobID)
	}
	if !access.IsModuleAdmin(actor, models.ModuleJob) {
		return nil, types.Forbidden("Not authorized to modify job %s", jobID)
	}
	return job, nil
}

// update applies updates to a job still at version, bumping the version
func (m *JobManager) update(ctx context.Context, job *models.Job, actorID string, updates map[string]any) error {
	updates["modified_by"] = actorID
	updates["version"] = gorm.Expr("version + 1")

	result := m.db.WithContext(ctx).Model(&models.Job{}).
		Where("jobid = ? AND version = ? AND cancelled = ?", job.JobID, job.Version, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.Conflict("Job %s was modified concurrently", job.JobID)
	}
	return nil
}

// CreateJob registers a new job under a freshly allocated JOB id
func (m *JobManager) CreateJob(ctx context.Context, actor *models.User, in JobInput) (*models.Job, error) {
	if err := validateJobInput(in); err != nil {
		return nil, err
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	jobID, err := m.ids.Next(ctx, SeqJob, PrefixJob, JobIDWidth)
	if err != nil {
		return nil, err
	}

	problems := datatypes.JSONSlice[models.Problem]{}
	for _, desc := range in.Problems {
		if desc = strings.TrimSpace(desc); desc != "" {
			problems = append(problems, models.Problem{ProbID: RandomID(PrefixProblem), Description: desc})
		}
	}

	dateIn := time.Now().UTC()
	if in.DateIn != nil {
		dateIn = in.DateIn.UTC()
	}

	job := models.Job{
		JobID:      jobID,
		Client:     normalize(in.Client),
		IMEI:       normalize(in.IMEI),
		JobNo:      normalize(in.JobNo),
		Brand:      normalize(in.Brand),
		Model:      normalize(in.Model),
		Priority:   priority,
		Status:     models.JobStatusNew,
		DateIn:     dateIn,
		Problems:   problems,
		CreatedBy:  actor.UserID,
		ModifiedBy: actor.UserID,
	}
	if err := m.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}

	m.log.Info().Str("jobid", jobID).Str("actor", actor.UserID).Msg("job created")
	return m.load(ctx, jobID)
}

// GetJob returns a job whether or not it is cancelled
func (m *JobManager) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	return m.load(ctx, jobID)
}

// ListJobs returns jobs newest first. activeOnly leaves out cancelled jobs
// and finished jobs that were approved.
func (m *JobManager) ListJobs(ctx context.Context, activeOnly bool) ([]models.Job, error) {
	query := m.db.WithContext(ctx).
		Clauses(hints.Comment("select", "job_list")).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		})
	if activeOnly {
		query = query.Where("cancelled = ? AND (status <> ? OR approved IS NULL OR approved = ?)",
			false, models.JobStatusDone, false)
	}

	jobs := []models.Job{}
	if err := query.Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	for i := range jobs {
		fillEmpty(&jobs[i])
	}
	return jobs, nil
}

// UpdateJob replaces the descriptive fields and priority of a job
func (m *JobManager) UpdateJob(ctx context.Context, actor *models.User, jobID string, in JobInput) (*models.Job, error) {
	if err := validateJobInput(in); err != nil {
		return nil, err
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	job, err := m.loadActive(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"client":   normalize(in.Client),
		"imei":     normalize(in.IMEI),
		"jobno":    normalize(in.JobNo),
		"brand":    normalize(in.Brand),
		"model":    normalize(in.Model),
		"priority": priority,
	}
	if in.DateIn != nil {
		updates["date_in"] = in.DateIn.UTC()
	}
	if err := m.update(ctx, job, actor.UserID, updates); err != nil {
		return nil, err
	}
	return m.load(ctx, jobID)
}

// AddPart raises a part request for stockID against the job and records it
// in the job's parts. The stock balance is not touched.
//
// The request and the job update are separate writes. When the job update
// fails the request stays open without a job referencing it; the prqid is
// logged so it can be cancelled by hand.
func (m *JobManager) AddPart(ctx context.Context, actor *models.User, jobID, stockID string, qty int64) (*models.Job, error) {
	stockID = strings.TrimSpace(stockID)
	if stockID == "" {
		return nil, types.Validation("stockid is required")
	}
	if qty <= 0 {
		return nil, types.Validation("qty must be greater than zero")
	}

	job, err := m.loadActive(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	item, err := m.stock.FindByID(ctx, stockID, false)
	if err != nil {
		return nil, err
	}

	prq, err := m.requests.AddRequest(ctx, actor.UserID, job.JobID, PartInput{
		StockID:   item.StockID,
		StockDesc: item.StockDesc,
		Qty:       qty,
	})
	if err != nil {
		return nil, err
	}

	if err := m.appendPart(ctx, actor.UserID, job.JobID, prq.PrqID); err != nil {
		m.metrics.OrphanedPartRequest()
		m.log.Error().Err(err).
			Str("jobid", job.JobID).
			Str("prqid", prq.PrqID).
			Msg("part request created but not added to job")
		return nil, err
	}

	m.log.Info().
		Str("jobid", job.JobID).
		Str("prqid", prq.PrqID).
		Str("stockid", item.StockID).
		Int64("qty", qty).
		Msg("part requested")

	return m.load(ctx, jobID)
}

func (m *JobManager) appendPart(ctx context.Context, actorID, jobID, prqID string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Job{}).
			Where("jobid = ? AND cancelled = ?", jobID, false).
			Updates(map[string]any{
				"modified_by": actorID,
				"version":     gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.NotFound("Job %s not found", jobID)
		}
		return tx.Create(&models.JobPart{JobID: jobID, PrqID: prqID}).Error
	})
}

// AddParts adds each part in order and stops at the first failure. Parts
// added before the failure stay on the job.
func (m *JobManager) AddParts(ctx context.Context, actor *models.User, jobID string, parts []PartInput) (*models.Job, error) {
	if len(parts) == 0 {
		return nil, types.Validation("At least one part is required")
	}

	var (
		job *models.Job
		err error
	)
	for _, p := range parts {
		if job, err = m.AddPart(ctx, actor, jobID, p.StockID, p.Qty); err != nil {
			return nil, err
		}
	}
	return job, nil
}

// RemovePart takes prqID off the job and cancels the request. Billed jobs
// keep their parts. Removing a part the job does not hold is NotFound and
// leaves the request untouched.
func (m *JobManager) RemovePart(ctx context.Context, actor *models.User, jobID, prqID string) (*models.Job, error) {
	job, err := m.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Cancelled || job.Billed {
		return nil, types.NotFound("Job %s not found", jobID)
	}
	if !access.CanActOnJob(actor, job) {
		return nil, types.Forbidden("Not authorized to modify job %s", jobID)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("jobid = ? AND prqid = ?", jobID, prqID).Delete(&models.JobPart{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.NotFound("Part %s not found on job %s", prqID, jobID)
		}

		result = tx.Model(&models.Job{}).
			Where("jobid = ? AND cancelled = ? AND billed = ?", jobID, false, false).
			Updates(map[string]any{
				"modified_by": actor.UserID,
				"version":     gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.NotFound("Job %s not found", jobID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := m.requests.CancelRequest(ctx, actor.UserID, jobID, prqID); err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			m.log.Error().Err(err).Str("jobid", jobID).Str("prqid", prqID).
				Msg("part removed from job but request not cancelled")
			return nil, err
		}
		m.log.Warn().Str("jobid", jobID).Str("prqid", prqID).
			Msg("part removed from job but request was already closed")
	}

	m.log.Info().Str("jobid", jobID).Str("prqid", prqID).Msg("part removed")
	return m.load(ctx, jobID)
}

// UpdateStatus moves the job to status. An unrecognised status changes
// nothing and returns a nil job and nil error.
func (m *JobManager) UpdateStatus(ctx context.Context, actor *models.User, jobID, status string) (*models.Job, error) {
	status = normalize(status)
	if !slices.Contains(models.JobStatuses, status) {
		m.log.Debug().Str("jobid", jobID).Str("status", status).Msg("ignoring unknown job status")
		return nil, nil
	}

	job, err := m.loadActive(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": status}
	if status == models.JobStatusDone {
		updates["date_out"] = time.Now().UTC()
	}
	if err := m.update(ctx, job, actor.UserID, updates); err != nil {
		return nil, err
	}

	m.metrics.JobTransition(status)
	return m.load(ctx, jobID)
}

// UpdateAssignee hands the job to an existing user. NEW jobs become ASSIGNED.
func (m *JobManager) UpdateAssignee(ctx context.Context, actor *models.User, jobID, assignee string) (*models.Job, error) {
	job, err := m.loadActiveAdmin(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	user, err := m.users.FindByID(ctx, assignee)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.Validation("Assignee %s is not a user", assignee)
		}
		return nil, err
	}

	updates := map[string]any{"assignee": user.UserID}
	if job.Status == models.JobStatusNew {
		updates["status"] = models.JobStatusAssigned
	}
	if err := m.update(ctx, job, actor.UserID, updates); err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusNew {
		m.metrics.JobTransition(models.JobStatusAssigned)
	}
	return m.load(ctx, jobID)
}

// ApproveJob records the approval decision on a DONE job. Jobs in any other
// status are NotFound.
func (m *JobManager) ApproveJob(ctx context.Context, actor *models.User, jobID string, approved bool) (*models.Job, error) {
	job, err := m.loadActiveAdmin(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusDone {
		return nil, types.NotFound("Job %s not found", jobID)
	}

	if err := m.update(ctx, job, actor.UserID, map[string]any{"approved": approved}); err != nil {
		return nil, err
	}
	return m.load(ctx, jobID)
}

// CancelJob marks the job cancelled and cancels its open part requests
func (m *JobManager) CancelJob(ctx context.Context, actor *models.User, jobID string) (*models.Job, error) {
	job, err := m.loadActiveAdmin(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Job{}).
			Where("jobid = ? AND version = ? AND cancelled = ?", jobID, job.Version, false).
			Updates(map[string]any{
				"cancelled":   true,
				"modified_by": actor.UserID,
				"version":     gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.Conflict("Job %s was modified concurrently", jobID)
		}
		return tx.Where("jobid = ?", jobID).Delete(&models.JobPart{}).Error
	})
	if err != nil {
		return nil, err
	}

	for _, prqID := range job.PartIDs() {
		if _, err := m.requests.CancelRequest(ctx, actor.UserID, jobID, prqID); err != nil && !errors.Is(err, types.ErrNotFound) {
			m.log.Error().Err(err).Str("jobid", jobID).Str("prqid", prqID).
				Msg("job cancelled but part request not cancelled")
		}
	}

	m.log.Info().Str("jobid", jobID).Str("actor", actor.UserID).Msg("job cancelled")
	return m.load(ctx, jobID)
}
