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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/localnerve/tevor-api/internal/utils"
)

// JobHandler serves the job routes
type JobHandler struct {
	Jobs *services.JobManager
}

// StatusBody is the body of PATCH /job/:id/status
type StatusBody struct {
	Status string `json:"status"`
}

// AssigneeBody is the body of PATCH /job/:id/assignee
type AssigneeBody struct {
	Assignee string `json:"assignee"`
}

// ApproveBody is the body of PATCH /job/:id/approve
type ApproveBody struct {
	Approved *bool `json:"approved"`
}

// ProblemBody is the body of the problem routes
type ProblemBody struct {
	Description string `json:"description"`
}

// ListJobs handles GET /api/job
// @Summary List jobs
// @Description List jobs newest first, optionally only the active ones
// @Tags Job
// @Produce json
// @Param active query bool false "Only jobs that are not cancelled and not approved"
// @Success 200 {object} utils.ResultResponseStruct{result=[]models.Job}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /job [get]
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.Jobs.ListJobs(c.UserContext(), queryBool(c, "active"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, jobs, fiber.StatusOK)
}

// GetJob handles GET /api/job/:id
// @Summary Get a job
// @Tags Job
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /job/{id} [get]
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.Jobs.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// CreateJob handles POST /api/job
// @Summary Create a job
// @Tags Job
// @Accept json
// @Produce json
// @Param job body services.JobInput true "Job"
// @Success 201 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /job [post]
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.JobInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	job, err := h.Jobs.CreateJob(c.UserContext(), user, in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusCreated)
}

// UpdateJob handles PUT /api/job/:id
// @Summary Update the descriptive fields of a job
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param job body services.JobInput true "Job"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /job/{id} [put]
func (h *JobHandler) UpdateJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.JobInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	job, err := h.Jobs.UpdateJob(c.UserContext(), user, c.Params("id"), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// CancelJob handles DELETE /api/job/:id
// @Summary Cancel a job
// @Description Marks the job cancelled and cancels its open part requests
// @Tags Job
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /job/{id} [delete]
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	job, err := h.Jobs.CancelJob(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// AddParts handles POST /api/job/:id/part
// @Summary Request parts for a job
// @Description Accepts one part object or an array of them. Stock balances are not changed.
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param parts body []PartBody true "Parts"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /job/{id}/part [post]
func (h *JobHandler) AddParts(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var parts PartsBody
	if err := parseBody(c, &parts); err != nil {
		return err
	}

	job, err := h.Jobs.AddParts(c.UserContext(), user, c.Params("id"), parts.Inputs())
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// RemovePart handles DELETE /api/job/:id/part/:partid
// @Summary Remove a part from a job
// @Description Takes the part request off the job and cancels it
// @Tags Job
// @Produce json
// @Param id path string true "Job ID"
// @Param partid path string true "Part request ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /job/{id}/part/{partid} [delete]
func (h *JobHandler) RemovePart(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	job, err := h.Jobs.RemovePart(c.UserContext(), user, c.Params("id"), c.Params("partid"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// UpdateStatus handles PATCH /api/job/:id/status
// @Summary Change the status of a job
// @Description An unrecognised status changes nothing and answers 204
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param status body StatusBody true "Status"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /job/{id}/status [patch]
func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body StatusBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	job, err := h.Jobs.UpdateStatus(c.UserContext(), user, c.Params("id"), body.Status)
	if err != nil {
		return err
	}
	if job == nil {
		return utils.NoContentResponse(c)
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// UpdateAssignee handles PATCH /api/job/:id/assignee
// @Summary Assign a job
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param assignee body AssigneeBody true "Assignee"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /job/{id}/assignee [patch]
func (h *JobHandler) UpdateAssignee(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body AssigneeBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	job, err := h.Jobs.UpdateAssignee(c.UserContext(), user, c.Params("id"), body.Assignee)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// ApproveJob handles PATCH /api/job/:id/approve
// @Summary Approve or reject a finished job
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param approve body ApproveBody true "Decision"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /job/{id}/approve [patch]
func (h *JobHandler) ApproveJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body ApproveBody
	if err := parseBody(c, &body); err != nil {
		return err
	}
	if body.Approved == nil {
		return types.Validation("approved is required")
	}

	job, err := h.Jobs.ApproveJob(c.UserContext(), user, c.Params("id"), *body.Approved)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// AddProblem handles POST /api/job/:id/problem
// @Summary Add a problem to a job
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param problem body ProblemBody true "Problem"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /job/{id}/problem [post]
func (h *JobHandler) AddProblem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body ProblemBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	job, err := h.Jobs.AddProblem(c.UserContext(), user, c.Params("id"), body.Description)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// UpdateProblem handles PUT /api/job/:id/problem/:probid
// @Summary Update a problem of a job
// @Tags Job
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param probid path string true "Problem ID"
// @Param problem body ProblemBody true "Problem"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /job/{id}/problem/{probid} [put]
func (h *JobHandler) UpdateProblem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body ProblemBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	job, err := h.Jobs.UpdateProblem(c.UserContext(), user, c.Params("id"), c.Params("probid"), body.Description)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}

// DeleteProblem handles DELETE /api/job/:id/problem/:probid
// @Summary Delete a problem of a job
// @Tags Job
// @Produce json
// @Param id path string true "Job ID"
// @Param probid path string true "Problem ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.Job}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /job/{id}/problem/{probid} [delete]
func (h *JobHandler) DeleteProblem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	job, err := h.Jobs.DeleteProblem(c.UserContext(), user, c.Params("id"), c.Params("probid"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, job, fiber.StatusOK)
}
