package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/pkg/utils"
	"gorm.io/gorm"
)

// Version is the server version, injected at build time:
//
//	go build -ldflags "-X github.com/silomba/backend/internal/handlers.Version=1.2.3"
var Version = "dev"

const apiVersion = "v1"

type versionResponse struct {
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
}

func GetVersion(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, versionResponse{
		Version:    Version,
		APIVersion: apiVersion,
	})
}

func Banner(c *fiber.Ctx) error {
	return utils.Message(c, fiber.StatusOK, "SILOMBA API "+apiVersion)
}

type HealthHandler struct {
	DB *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{DB: db}
}

// Health reports ok when the database answers a ping.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
