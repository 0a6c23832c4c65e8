package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/internal/middleware"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/pkg/utils"
)

type UsersHandler struct {
	Users *services.UserService
	Audit *services.AuditService
}

func NewUsersHandler(users *services.UserService, audit *services.AuditService) *UsersHandler {
	return &UsersHandler{Users: users, Audit: audit}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, users)
}

type updateRoleRequest struct {
	Role string `json:"role" form:"role"`
}

func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "user")
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	currentUser := middleware.GetCurrentUser(c)
	role := models.UserRole(strings.TrimSpace(req.Role))

	user, err := h.Users.UpdateRole(c.UserContext(), currentUser, userID, role)
	if err != nil {
		return err
	}

	h.Audit.LogAsync(services.AuditEntry{
		ActorID:      &currentUser.ID,
		Action:       "user.role_update",
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details: map[string]interface{}{
			"role": string(user.Role),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.SuccessWithMessage(c, fiber.StatusOK, "user role updated", user)
}
