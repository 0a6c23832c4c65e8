package utils

import "github.com/gofiber/fiber/v2"

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": StatusSuccess,
		"data":   data,
	})
}

func SuccessWithMessage(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  StatusSuccess,
		"message": message,
		"data":    data,
	})
}

func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  StatusSuccess,
		"message": message,
	})
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Error writes the error envelope. 4xx responses carry status "fail", 5xx
// carry "error".
func Error(c *fiber.Ctx, status int, code, message string) error {
	statusText := StatusError
	if status >= 400 && status < 500 {
		statusText = StatusFail
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  statusText,
		"code":    code,
		"message": message,
	})
}
