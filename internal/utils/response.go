package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/rs/zerolog"
)

// ResultResponse sends data wrapped as {"result": data}
func ResultResponse(c *fiber.Ctx, data any, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"result": data,
	})
}

// NoContentResponse answers a recognised request that changed nothing
func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ErrorResponse sends {"error": message}
func ErrorResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// ErrorHandler renders every error returned by a handler as one JSON body.
// Errors that are neither a CustomError nor a fiber.Error are logged and
// answered with a generic 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ce *types.CustomError
		if errors.As(err, &ce) {
			return ErrorResponse(c, ce.Message, ce.Code)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ErrorResponse(c, fe.Message, fe.Code)
		}

		log.Error().Err(err).
			Str("method", c.Method()).
			Str("url", c.OriginalURL()).
			Interface("request_id", c.Locals("requestId")).
			Msg("unhandled error")
		return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError)
	}
}

// ResultResponseStruct defines the schema for success responses
type ResultResponseStruct struct {
	Result any `json:"result"`
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Error string `json:"error"`
}
