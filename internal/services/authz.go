package services

import (
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/models"
)

// Authorize checks an already authenticated user against the roles a route
// requires. An empty role set admits every authenticated user.
func Authorize(user *models.User, roles ...models.UserRole) error {
	if user == nil {
		return apperror.ErrUnauthenticated
	}
	if len(roles) == 0 || user.Role.In(roles...) {
		return nil
	}
	return apperror.ErrForbidden
}
