package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/utils"
)

// UserHandler serves the user routes
type UserHandler struct {
	Users *services.UserDirectory
}

// ProfileBody is the body of PUT /user
type ProfileBody struct {
	ShortName string `json:"shortname"`
}

// GetProfile handles GET /api/user
// @Summary Get the current user
// @Tags User
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct{result=models.User}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /user [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, user, fiber.StatusOK)
}

// UpdateProfile handles PUT /api/user
// @Summary Change the shortname of the current user
// @Tags User
// @Accept json
// @Produce json
// @Param profile body ProfileBody true "Profile"
// @Success 200 {object} utils.ResultResponseStruct{result=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /user [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var body ProfileBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	updated, err := h.Users.UpdateProfile(c.UserContext(), user.UserID, body.ShortName)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, updated, fiber.StatusOK)
}

// ListUsers handles GET /api/user/all
// @Summary List users
// @Tags User
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct{result=[]models.User}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /user/all [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, users, fiber.StatusOK)
}

// GetUser handles GET /api/user/:id
// @Summary Get a user
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} utils.ResultResponseStruct{result=models.User}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.Users.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, user, fiber.StatusOK)
}

// CreateUser handles POST /api/user
// @Summary Create a user
// @Tags User
// @Accept json
// @Produce json
// @Param user body services.UserInput true "User"
// @Success 201 {object} utils.ResultResponseStruct{result=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /user [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user, err := h.Users.CreateUser(c.UserContext(), actor.UserID, in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, user, fiber.StatusCreated)
}

// UpdateUser handles PUT /api/user/:id
// @Summary Update a user
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body services.UserInput true "User"
// @Success 200 {object} utils.ResultResponseStruct{result=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user, err := h.Users.UpdateUser(c.UserContext(), actor.UserID, c.Params("id"), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, user, fiber.StatusOK)
}

// DeleteUser handles DELETE /api/user/:id
// @Summary Delete a user
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	userID := c.Params("id")
	if err := h.Users.DeleteUser(c.UserContext(), actor.UserID, userID); err != nil {
		return err
	}
	return utils.ResultResponse(c, fiber.Map{"userid": userID}, fiber.StatusOK)
}
