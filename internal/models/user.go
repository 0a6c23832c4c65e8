package models

type UserRole string

const (
	UserRoleStudent    UserRole = "STUDENT"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// Moderators may publish without review, moderate, archive and delete competitions.
var Moderators = []UserRole{UserRoleAdmin, UserRoleSuperAdmin}

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleStudent, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	default:
		return false
	}
}

func (r UserRole) In(roles ...UserRole) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"type:varchar(150);not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'STUDENT';index"`
}
