// Package apperror defines the operational errors returned by services and
// their mapping onto HTTP status codes. Handlers return these unchanged and
// the boundary error handler serialises them.
package apperror

import (
	"errors"
	"net/http"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUserGone           = "USER_GONE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeProtectedRole      = "PROTECTED_ROLE"
	CodeNotFound           = "NOT_FOUND"
	CodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeDuplicateCategory  = "DUPLICATE_CATEGORY"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeSelfModification   = "SELF_MODIFICATION"
	CodeInvalidDateRange   = "INVALID_DATE_RANGE"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidDomain      = "INVALID_DOMAIN"
	CodeInvalidPoster      = "INVALID_POSTER"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so errors.Is works against the exported sentinels.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// CodeForStatus picks the generic code for errors that only carry a status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeValidation
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	if code == "" {
		code = CodeValidation
	}
	return New(http.StatusBadRequest, code, message)
}

func Unauthenticated(code, message string) *Error {
	if code == "" {
		code = CodeUnauthenticated
	}
	return New(http.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *Error {
	if code == "" {
		code = CodeForbidden
	}
	return New(http.StatusForbidden, code, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func Conflict(code, message string) *Error {
	if code == "" {
		code = CodeConflict
	}
	return New(http.StatusConflict, code, message)
}

// Internal wraps an unexpected failure. The message is what clients see; err
// is only logged.
func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

var (
	ErrUnauthenticated    = Unauthenticated(CodeUnauthenticated, "not logged in")
	ErrInvalidToken       = Unauthenticated(CodeInvalidToken, "invalid or expired token")
	ErrUserGone           = Unauthenticated(CodeUserGone, "user for this token no longer exists")
	ErrInvalidCredentials = Unauthenticated(CodeInvalidCredentials, "invalid email or password")
	ErrForbidden          = Forbidden(CodeForbidden, "you do not have permission to perform this action")
	ErrProtectedRole      = Forbidden(CodeProtectedRole, "cannot change the role of a super admin")
	ErrSelfModification   = Validation(CodeSelfModification, "cannot change your own role")
	ErrInvalidRole        = Validation(CodeInvalidRole, "role can only be changed to STUDENT or ADMIN")
	ErrInvalidStatus      = Validation(CodeInvalidStatus, "status must be ACCEPTED or REJECTED")
	ErrInvalidDateRange   = Validation(CodeInvalidDateRange, "registrationEndDate must not be before registrationStartDate")
	ErrCategoryNotFound   = Validation(CodeCategoryNotFound, "category not found")
	ErrWeakPassword       = Validation(CodeWeakPassword, "password must be at least 8 characters")
	ErrInvalidDomain      = Validation(CodeInvalidDomain, "registration requires an institutional email address")
	ErrDuplicateEmail     = Conflict(CodeDuplicateEmail, "email already registered")
	ErrDuplicateCategory  = Conflict(CodeDuplicateCategory, "category name already exists")
	ErrInvalidTransition  = Conflict(CodeInvalidTransition, "competition has already been moderated")
	ErrRateLimited        = New(http.StatusTooManyRequests, CodeRateLimited, "too many requests, try again later")
)
