package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/utils"
)

// PartRequestHandler serves the part request routes
type PartRequestHandler struct {
	Requests *services.PartRequestRegistry
}

// ListOpen handles GET /api/partrequest
// @Summary List open part requests
// @Description Requests not yet closed, most recently modified first
// @Tags PartRequest
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct{result=[]models.PartRequest}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /partrequest [get]
func (h *PartRequestHandler) ListOpen(c *fiber.Ctx) error {
	requests, err := h.Requests.ListOpen(c.UserContext())
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, requests, fiber.StatusOK)
}

// GetRequest handles GET /api/partrequest/:id
// @Summary Get a part request
// @Tags PartRequest
// @Produce json
// @Param id path string true "Part request ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.PartRequest}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /partrequest/{id} [get]
func (h *PartRequestHandler) GetRequest(c *fiber.Ctx) error {
	prq, err := h.Requests.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, prq, fiber.StatusOK)
}

// ListByJob handles GET /api/job/:id/partrequests
// @Summary List the part requests of a job
// @Description Every request the job ever raised, open or closed, oldest first
// @Tags PartRequest
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} utils.ResultResponseStruct{result=[]models.PartRequest}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /job/{id}/partrequests [get]
func (h *PartRequestHandler) ListByJob(c *fiber.Ctx) error {
	requests, err := h.Requests.ListByJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, requests, fiber.StatusOK)
}
