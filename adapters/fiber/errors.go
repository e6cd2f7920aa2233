package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"

	"github.com/lborres/studyplan/core"
)

// mapErrorToStatus maps error kinds to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindConflict:
		return http.StatusConflict
	case core.KindAuthentication, core.KindSessionExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse renders err as its user-facing message. Storage errors
// are logged and shown generically.
func errorResponse(c fiber.Ctx, err error) (int, core.ErrorResponse) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return status, core.ErrorResponse{
		Error: core.UserMessage(err),
		Kind:  core.KindOf(err).String(),
	}
}

func (a *Adapter) fail(c fiber.Ctx, err error) error {
	status, body := errorResponse(c, err)
	return c.Status(status).JSON(body)
}
