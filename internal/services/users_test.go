package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/models"
)

func TestUserService_List(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "b@unhas.ac.id", models.UserRoleStudent)
	createTestUser(t, db, "a@unhas.ac.id", models.UserRoleSuperAdmin)

	users, err := NewUserService(db).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name > users[1].Name {
		t.Errorf("expected users ordered by name, got %q before %q", users[0].Name, users[1].Name)
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db)
	ctx := context.Background()

	superAdmin := createTestUser(t, db, "kadep@unhas.ac.id", models.UserRoleSuperAdmin)
	otherSuper := createTestUser(t, db, "wakil@unhas.ac.id", models.UserRoleSuperAdmin)
	student := createTestUser(t, db, "mhs@unhas.ac.id", models.UserRoleStudent)

	tests := []struct {
		name   string
		target uuid.UUID
		role   models.UserRole
		want   error
	}{
		{"promote to super admin", student.ID, models.UserRoleSuperAdmin, apperror.ErrInvalidRole},
		{"unknown role", student.ID, models.UserRole("OWNER"), apperror.ErrInvalidRole},
		{"self", superAdmin.ID, models.UserRoleStudent, apperror.ErrSelfModification},
		{"missing user", uuid.New(), models.UserRoleAdmin, apperror.NotFound("")},
		{"other super admin", otherSuper.ID, models.UserRoleAdmin, apperror.ErrProtectedRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateRole(ctx, superAdmin, tt.target, tt.role)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("promote and demote", func(t *testing.T) {
		updated, err := s.UpdateRole(ctx, superAdmin, student.ID, models.UserRoleAdmin)
		if err != nil {
			t.Fatalf("UpdateRole failed: %v", err)
		}
		if updated.Role != models.UserRoleAdmin {
			t.Errorf("expected ADMIN, got %s", updated.Role)
		}

		var stored models.User
		db.First(&stored, "id = ?", student.ID)
		if stored.Role != models.UserRoleAdmin {
			t.Errorf("expected stored role ADMIN, got %s", stored.Role)
		}

		if _, err := s.UpdateRole(ctx, superAdmin, student.ID, models.UserRoleStudent); err != nil {
			t.Fatalf("demote failed: %v", err)
		}
		db.First(&stored, "id = ?", student.ID)
		if stored.Role != models.UserRoleStudent {
			t.Errorf("expected stored role STUDENT, got %s", stored.Role)
		}
	})
}
