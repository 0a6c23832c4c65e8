package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/config"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/pkg/logger"
	"github.com/silomba/backend/pkg/utils"
	"gorm.io/gorm"
)

const minPasswordChars = 8

type AuthService struct {
	DB             *gorm.DB
	allowedDomains []string
}

func NewAuthService(db *gorm.DB, cfg config.AuthConfig) *AuthService {
	domains := make([]string, 0, len(cfg.AllowedEmailDomains))
	for _, domain := range cfg.AllowedEmailDomains {
		domains = append(domains, strings.ToLower(strings.TrimSpace(domain)))
	}
	return &AuthService{DB: db, allowedDomains: domains}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailAllowed reports whether email is a single-@ address whose domain is
// exactly one of the configured institutional domains. Subdomains do not match.
func (s *AuthService) EmailAllowed(email string) bool {
	local, domain, ok := strings.Cut(NormalizeEmail(email), "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return false
	}
	if strings.ContainsAny(local, " \t") {
		return false
	}
	for _, allowed := range s.allowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperror.Validation("", "name, email and password are required")
	}
	if !s.EmailAllowed(email) {
		return nil, apperror.ErrInvalidDomain
	}
	if utf8.RuneCountInString(in.Password) < minPasswordChars {
		return nil, apperror.ErrWeakPassword
	}

	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
		return nil, internalError("failed checking existing user", err)
	}
	if count > 0 {
		return nil, apperror.ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRoleStudent,
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, internalError("failed creating user", err)
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
	})

	return &user, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password fail with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperror.Validation("", "email and password are required")
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "LOWER(email) = ?", email).Error; err != nil {
		if !isNotFound(err) {
			return nil, "", internalError("failed loading user", err)
		}
		logger.Warn("login_failed_user_not_found", map[string]interface{}{
			"email": email,
		})
		return nil, "", apperror.ErrInvalidCredentials
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		logger.Warn("login_failed_invalid_password", map[string]interface{}{
			"user_id": user.ID.String(),
			"email":   email,
		})
		return nil, "", apperror.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return nil, "", internalError("failed generating token", err)
	}

	logger.Info("user_login", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	return &user, token, nil
}

// CurrentUser resolves a session token into the user it was issued for.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.ErrUnauthenticated
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.ErrUserGone
		}
		return nil, internalError("failed loading user", err)
	}

	return &user, nil
}
