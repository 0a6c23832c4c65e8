package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/pkg/logger"
	"github.com/silomba/backend/pkg/utils"
)

// ErrorHandler is the single place errors become responses. Operational
// errors keep their status and code; anything unexpected is a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperror.As(err); ok {
		if appErr.Status >= fiber.StatusInternalServerError {
			logger.Error("request_failed", err, requestDetails(c))
		}
		return utils.Error(c, appErr.Status, appErr.Code, appErr.Message)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError {
			logger.Error("request_failed", err, requestDetails(c))
		}
		return utils.Error(c, fiberErr.Code, apperror.CodeForStatus(fiberErr.Code), fiberErr.Message)
	}

	logger.Error("unhandled_error", err, requestDetails(c))
	return utils.Error(c, fiber.StatusInternalServerError, apperror.CodeInternal, "internal server error")
}

// ErrorBoundary renders errors returned further down the chain so that the
// logging and metrics middlewares mounted before it observe the final status.
func ErrorBoundary() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		if handlerErr := ErrorHandler(c, err); handlerErr != nil {
			return handlerErr
		}
		return nil
	}
}

func requestDetails(c *fiber.Ctx) map[string]interface{} {
	return map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": GetRequestID(c),
	}
}
