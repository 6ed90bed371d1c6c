package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// signinFailedMessage is shown for both an unknown email and a wrong password.
const signinFailedMessage = "invalid email or password"

var statusByKind = []struct {
	kind   error
	status int
}{
	{common.ErrorUnauthenticated, fiber.StatusUnauthorized},
	{common.ErrorForbidden, fiber.StatusForbidden},
	{common.ErrorNotFound, fiber.StatusNotFound},
	{common.ErrorConflict, fiber.StatusConflict},
	{common.ErrorInvalidInput, fiber.StatusBadRequest},
	{common.ErrorInvalidOrExpiredToken, fiber.StatusBadRequest},
}

// statusFor maps an error to an HTTP status and the message shown to clients.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	for _, m := range statusByKind {
		if errors.Is(err, m.kind) {
			return m.status, err.Error()
		}
	}
	return fiber.StatusInternalServerError, "internal server error"
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
