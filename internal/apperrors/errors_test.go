package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsSetCodeAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", Validation("bad input", nil), "VALIDATION_ERROR", http.StatusBadRequest},
		{"not found", NotFound("missing"), "NOT_FOUND", http.StatusNotFound},
		{"conflict", Conflict("duplicate"), "CONFLICT", http.StatusConflict},
		{"insufficient funds", InsufficientFunds("broke"), "INSUFFICIENT_FUNDS", http.StatusPaymentRequired},
		{"insufficient inventory", InsufficientInventory("no packs"), "INSUFFICIENT_INVENTORY", http.StatusConflict},
		{"configuration", Configuration("no base"), "CONFIGURATION_ERROR", http.StatusInternalServerError},
		{"unauthorized", Unauthorized("who", nil), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), "FORBIDDEN", http.StatusForbidden},
		{"internal", Internal("boom", nil), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.Status)
		})
	}
}

func TestErrorStringIncludesCodeAndMessage(t *testing.T) {
	err := NotFound("Product not found")
	assert.Equal(t, "NOT_FOUND: Product not found", err.Error())
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("driver: bad connection")
	err := Internal("Failed to load product", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("duplicate slug"))

	assert.True(t, Is(err, "CONFLICT"))
	assert.False(t, Is(err, "NOT_FOUND"))
	assert.False(t, Is(errors.New("plain"), "CONFLICT"))
}
