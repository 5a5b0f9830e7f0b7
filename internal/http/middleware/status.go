package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// finalStatus is the status the client will see. When a handler returns an error the
// global error handler has not run yet, so the response still carries the default 200.
func finalStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
