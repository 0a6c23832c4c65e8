package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/pkg/logger"
)

const (
	currentUserKey = "currentUser"
	userIDKey      = "userID"

	// SessionCookie holds the signed session token.
	SessionCookie = "token"
)

type AuthMiddleware struct {
	Auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth}
}

// CORS allows credentialed requests from the configured frontend origins.
func CORS(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
	})
}

// TokenFromRequest reads the session cookie, falling back to a Bearer
// Authorization header for non-browser clients.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(SessionCookie)); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	user, err := a.Auth.CurrentUser(c.UserContext(), TokenFromRequest(c))
	if err != nil {
		reason := "unknown"
		if appErr, ok := apperror.As(err); ok {
			reason = appErr.Code
		}
		logger.Warn("auth_rejected", map[string]interface{}{
			"ip":     c.IP(),
			"path":   c.Path(),
			"reason": reason,
		})
		return err
	}

	c.Locals(currentUserKey, user)
	c.Locals(userIDKey, user.ID.String())
	return c.Next()
}

// RequireRoles admits the request only when the authenticated user holds one
// of roles. It must be mounted after RequireAuth.
func RequireRoles(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := services.Authorize(GetCurrentUser(c), roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
