package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
		target error
	}{
		{"Bad request", BadRequest("invalid json"), "BAD_REQUEST", http.StatusBadRequest, ErrBadRequest},
		{"Validation", Validation("age: invalid", map[string]string{"field": "age"}), "VALIDATION_ERROR", http.StatusBadRequest, ErrValidation},
		{"Unauthorized", Unauthorized("missing token"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"Forbidden", Forbidden("no role"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"Rate limited", TooManyRequests(), "RATE_LIMITED", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, tt.err.HTTPStatus)
			}
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("Expected error to wrap %v", tt.target)
			}
		})
	}
}

func TestValidationMessageHasNoSentinelSuffix(t *testing.T) {
	err := Validation("sex: invalid", nil)
	if err.Error() != "sex: invalid" {
		t.Errorf("Expected plain message, got %q", err.Error())
	}
}

func TestFrom(t *testing.T) {
	cause := fmt.Errorf("disk full")
	appErr := From(fmt.Errorf("append prediction: %w", cause))
	if appErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", appErr.HTTPStatus)
	}
	if !errors.Is(appErr, cause) {
		t.Error("Expected internal error to keep its cause")
	}

	wrapped := fmt.Errorf("handler: %w", BadRequest("bad"))
	if got := From(wrapped); got.Code != "BAD_REQUEST" {
		t.Errorf("Expected BAD_REQUEST, got %s", got.Code)
	}
}

func TestWrap(t *testing.T) {
	appErr := Wrap(BadRequest("bad body"), "decode")
	if appErr.Message != "decode: bad body" {
		t.Errorf("Expected prefixed message, got %q", appErr.Message)
	}

	plain := Wrap(fmt.Errorf("boom"), "store")
	if plain.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", plain.HTTPStatus)
	}
}
