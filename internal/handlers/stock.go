package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/localnerve/tevor-api/internal/utils"
)

// StockHandler serves the stock routes
type StockHandler struct {
	Stock *services.StockLedger
}

// StockBody is the body of POST and PUT /stock
type StockBody struct {
	StockID   string        `json:"stockid"`
	StockDesc string        `json:"stockDesc"`
	BalQty    types.FlexInt `json:"balQty"`
}

// BalanceBody is the body of PATCH /stock/:id/balance
type BalanceBody struct {
	AdjQty types.FlexInt `json:"adjQty"`
	RefID  string        `json:"refid,omitempty"`
}

// ListItems handles GET /api/stock
// @Summary List stock items
// @Tags Stock
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct{result=[]models.StockItem}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /stock [get]
func (h *StockHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.Stock.ListItems(c.UserContext())
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, items, fiber.StatusOK)
}

// GetItem handles GET /api/stock/:id
// @Summary Get a stock item
// @Tags Stock
// @Produce json
// @Param id path string true "Stock ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.StockItem}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stock/{id} [get]
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.Stock.FindByID(c.UserContext(), c.Params("id"), false)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, item, fiber.StatusOK)
}

// CreateItem handles POST /api/stock
// @Summary Create a stock item
// @Tags Stock
// @Accept json
// @Produce json
// @Param item body StockBody true "Stock item"
// @Success 201 {object} utils.ResultResponseStruct{result=models.StockItem}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /stock [post]
func (h *StockHandler) CreateItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body StockBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	item, err := h.Stock.CreateItem(c.UserContext(), user.UserID, body.StockID, body.StockDesc, body.BalQty.Int64())
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, item, fiber.StatusCreated)
}

// UpdateItem handles PUT /api/stock/:id
// @Summary Update the description of a stock item
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path string true "Stock ID"
// @Param item body StockBody true "Stock item"
// @Success 200 {object} utils.ResultResponseStruct{result=models.StockItem}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stock/{id} [put]
func (h *StockHandler) UpdateItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body StockBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	item, err := h.Stock.UpdateItem(c.UserContext(), user.UserID, c.Params("id"), body.StockDesc)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, item, fiber.StatusOK)
}

// DeleteItem handles DELETE /api/stock/:id
// @Summary Delete a stock item
// @Tags Stock
// @Produce json
// @Param id path string true "Stock ID"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stock/{id} [delete]
func (h *StockHandler) DeleteItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	stockID := c.Params("id")
	if err := h.Stock.DeleteItem(c.UserContext(), user.UserID, stockID); err != nil {
		return err
	}
	return utils.ResultResponse(c, fiber.Map{"stockid": stockID}, fiber.StatusOK)
}

// AdjustBalance handles PATCH /api/stock/:id/balance
// @Summary Adjust the balance of a stock item
// @Description Adds adjQty (negative to take out). The balance never goes below zero.
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path string true "Stock ID"
// @Param balance body BalanceBody true "Adjustment"
// @Success 200 {object} utils.ResultResponseStruct{result=models.StockItem}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stock/{id}/balance [patch]
func (h *StockHandler) AdjustBalance(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body BalanceBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	item, err := h.Stock.AdjustBalance(c.UserContext(), user.UserID, c.Params("id"), body.AdjQty.Int64(), services.AuditRef{
		Module: string(models.ModuleStock),
		RefID:  body.RefID,
		Type:   models.AuditAdjustment,
	})
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, item, fiber.StatusOK)
}

// ListAudits handles GET /api/stock/:id/audit
// @Summary List the balance movements of a stock item
// @Tags Stock
// @Produce json
// @Param id path string true "Stock ID"
// @Success 200 {object} utils.ResultResponseStruct{result=[]models.StockAudit}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stock/{id}/audit [get]
func (h *StockHandler) ListAudits(c *fiber.Ctx) error {
	audits, err := h.Stock.ListAudits(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, audits, fiber.StatusOK)
}
