package services

import (
	"errors"
	"testing"

	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/models"
)

func TestAuthorize(t *testing.T) {
	student := &models.User{Role: models.UserRoleStudent}
	admin := &models.User{Role: models.UserRoleAdmin}
	superAdmin := &models.User{Role: models.UserRoleSuperAdmin}

	tests := []struct {
		name  string
		user  *models.User
		roles []models.UserRole
		want  error
	}{
		{"no user", nil, nil, apperror.ErrUnauthenticated},
		{"any authenticated", student, nil, nil},
		{"student to moderator route", student, models.Moderators, apperror.ErrForbidden},
		{"admin to moderator route", admin, models.Moderators, nil},
		{"super admin to moderator route", superAdmin, models.Moderators, nil},
		{"admin to super admin route", admin, []models.UserRole{models.UserRoleSuperAdmin}, apperror.ErrForbidden},
		{"super admin to super admin route", superAdmin, []models.UserRole{models.UserRoleSuperAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.roles...)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
