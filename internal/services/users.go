package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/pkg/logger"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, internalError("failed listing users", err)
	}
	return users, nil
}

// UpdateRole moves a user between STUDENT and ADMIN. Nobody can change their
// own role, promote to SUPER_ADMIN, or touch a SUPER_ADMIN through this path.
func (s *UserService) UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.UserRole) (*models.User, error) {
	if role != models.UserRoleStudent && role != models.UserRoleAdmin {
		return nil, apperror.ErrInvalidRole
	}
	if actor != nil && actor.ID == targetID {
		return nil, apperror.ErrSelfModification
	}

	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", targetID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, internalError("failed fetching user", err)
	}
	if user.Role == models.UserRoleSuperAdmin {
		return nil, apperror.ErrProtectedRole
	}

	previous := user.Role
	if previous != role {
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			return nil, internalError("failed updating user role", err)
		}
		user.Role = role
	}

	details := map[string]interface{}{
		"target_user_id": user.ID.String(),
		"previous_role":  string(previous),
		"role":           string(role),
	}
	if actor != nil {
		logger.InfoWithUser(actor.ID.String(), "user_role_updated", details)
	} else {
		logger.Info("user_role_updated", details)
	}

	return &user, nil
}
