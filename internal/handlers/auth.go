package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/internal/middleware"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/pkg/utils"
)

type AuthHandler struct {
	Auth         *services.AuthService
	Audit        *services.AuditService
	CookieSecure bool
}

func NewAuthHandler(auth *services.AuthService, audit *services.AuditService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Audit: audit, CookieSecure: cookieSecure}
}

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.Auth.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.Audit.LogAsync(services.AuditEntry{
		ActorID:      &user.ID,
		Action:       "user.register",
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details: map[string]interface{}{
			"email": user.Email,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.SuccessWithMessage(c, fiber.StatusCreated, "registration successful", user)
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	ttl := utils.TokenTTL()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	h.Audit.LogAsync(services.AuditEntry{
		ActorID:      &user.ID,
		Action:       "user.login",
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details: map[string]interface{}{
			"email": user.Email,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.SuccessWithMessage(c, fiber.StatusOK, "login successful", user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return utils.Message(c, fiber.StatusOK, "logged out")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, middleware.GetCurrentUser(c))
}
