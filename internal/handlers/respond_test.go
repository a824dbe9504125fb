package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// postJSON builds a test context carrying the given JSON body, the way
// requests arrive after the router and session middleware have run.
func postJSON(t *testing.T, body string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondErrorAppError(t *testing.T) {
	w, c := postJSON(t, "{}")

	respondError(c, apperrors.NotFound("Product not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Product not found", body.Error)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestRespondErrorUnwrapsWrappedAppError(t *testing.T) {
	w, c := postJSON(t, "{}")

	wrapped := fmt.Errorf("buying product: %w", apperrors.InsufficientFunds("Insufficient wallet balance"))
	respondError(c, wrapped)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Insufficient wallet balance", body.Error)
	assert.Equal(t, "INSUFFICIENT_FUNDS", body.Code)
}

func TestRespondErrorHidesInternalCauses(t *testing.T) {
	w, c := postJSON(t, "{}")

	respondError(c, errors.New("dial tcp 10.0.0.5:3306: connect: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "An unexpected error occurred", body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")
}

// These all fail binding before any dependency is touched, so a zero-value
// Handlers is enough. The table doubles as a contract for the messages the
// UI shows next to form fields.
func TestHandlerInputValidation(t *testing.T) {
	h := &Handlers{}

	cases := []struct {
		name    string
		body    string
		handler gin.HandlerFunc
		want    string
	}{
		{"open pack without product", `{}`, h.OpenPack, "productid is required"},
		{"open pack negative product", `{"productId": -3}`, h.OpenPack, "productid must be greater than 0"},
		{"buy with unknown unit", `{"productId": 1, "unit": "case", "quantity": 1}`, h.BuyProduct, "unit must be one of: pack box"},
		{"buy zero quantity", `{"productId": 1, "unit": "pack", "quantity": 0}`, h.BuyProduct, "quantity is required"},
		{"buy oversized quantity", `{"productId": 1, "unit": "pack", "quantity": 500}`, h.BuyProduct, "quantity must be at most 100"},
		{"topup negative amount", `{"amount": -5}`, h.TopUpWallet, "amount must be greater than 0"},
		{"topup over the cap", `{"amount": 50000}`, h.TopUpWallet, "amount must be at most 10000"},
		{"register short password", `{"email": "a@b.dev", "password": "short", "displayName": "Alex"}`, h.Register, "password must be at least 8"},
		{"register bad email", `{"email": "not-an-email", "password": "longenough", "displayName": "Alex"}`, h.Register, "email must be a valid email address"},
		{"malformed json", `{"productId":`, h.OpenPack, "Invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, c := postJSON(t, tc.body)
			c.Set("userID", int64(7))

			tc.handler(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, "VALIDATION_ERROR", body.Code)
			assert.Equal(t, tc.want, body.Error)
		})
	}
}
