package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantStatus int
		wantCode   string
	}{
		{"validation default code", Validation("", "bad"), http.StatusBadRequest, CodeValidation},
		{"validation custom code", Validation(CodeInvalidPoster, "bad poster"), http.StatusBadRequest, CodeInvalidPoster},
		{"unauthenticated", Unauthenticated("", "who"), http.StatusUnauthorized, CodeUnauthenticated},
		{"forbidden", Forbidden("", "no"), http.StatusForbidden, CodeForbidden},
		{"not found", NotFound("missing"), http.StatusNotFound, CodeNotFound},
		{"conflict", Conflict("", "dup"), http.StatusConflict, CodeConflict},
		{"internal", Internal("boom", errors.New("db down")), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.wantCode)
			}
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed loading users", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "failed loading users: connection refused" {
		t.Errorf("unexpected Error() %q", err.Error())
	}
}

func TestAsAndIs(t *testing.T) {
	wrapped := fmt.Errorf("updating role: %w", ErrProtectedRole)

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to find *Error in chain")
	}
	if appErr.Status != http.StatusForbidden {
		t.Errorf("expected 403, got %d", appErr.Status)
	}
	if !errors.Is(wrapped, ErrProtectedRole) {
		t.Error("expected errors.Is to match sentinel by code")
	}
	if errors.Is(wrapped, ErrSelfModification) {
		t.Error("expected different codes not to match")
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("expected plain error not to convert")
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := map[int]string{
		http.StatusBadRequest:            CodeValidation,
		http.StatusRequestEntityTooLarge: CodeValidation,
		http.StatusUnauthorized:          CodeUnauthenticated,
		http.StatusForbidden:             CodeForbidden,
		http.StatusNotFound:              CodeNotFound,
		http.StatusMethodNotAllowed:      CodeNotFound,
		http.StatusConflict:              CodeConflict,
		http.StatusTooManyRequests:       CodeRateLimited,
		http.StatusBadGateway:            CodeInternal,
	}
	for status, want := range tests {
		if got := CodeForStatus(status); got != want {
			t.Errorf("CodeForStatus(%d) = %q, want %q", status, got, want)
		}
	}
}
