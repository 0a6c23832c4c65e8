package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/silomba/backend/internal/middleware"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/pkg/utils"
)

type CategoriesHandler struct {
	Categories *services.CategoryService
	Audit      *services.AuditService
}

func NewCategoriesHandler(categories *services.CategoryService, audit *services.AuditService) *CategoriesHandler {
	return &CategoriesHandler{Categories: categories, Audit: audit}
}

type categoryRequest struct {
	Name string `json:"name" form:"name"`
}

func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.Categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, categories)
}

func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.Categories.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}

	h.audit(c, "category.create", category.ID, map[string]interface{}{"name": category.Name})
	return utils.Success(c, fiber.StatusCreated, category)
}

func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "category")
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.Categories.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}

	h.audit(c, "category.update", category.ID, map[string]interface{}{"name": category.Name})
	return utils.Success(c, fiber.StatusOK, category)
}

func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "category")
	if err != nil {
		return err
	}

	category, err := h.Categories.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}

	h.audit(c, "category.delete", category.ID, map[string]interface{}{"name": category.Name})
	return utils.NoContent(c)
}

func (h *CategoriesHandler) audit(c *fiber.Ctx, action string, id uuid.UUID, details map[string]interface{}) {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return
	}
	h.Audit.LogAsync(services.AuditEntry{
		ActorID:      &currentUser.ID,
		Action:       action,
		ResourceType: "category",
		ResourceID:   &id,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})
}
