package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError is the single place an error becomes an HTTP response.
// Every failure leaving a handler goes through here so the wire format is
// always {error, code}: the human-readable text the legacy UI prints plus
// a stable code clients can branch on.
func respondError(c *gin.Context, err error) {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationMessage(validationErr),
			"code":  "VALIDATION_ERROR",
		})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "An unexpected error occurred",
		"code":  "INTERNAL_ERROR",
	})
}

// bindJSON binds and validates the request body, writing the error
// response itself. Returns false when the request was rejected.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		respondError(c, err)
	} else {
		// Malformed JSON or a type mismatch, not a tag failure.
		respondError(c, apperrors.Validation("Invalid request body", err))
	}
	return false
}

// validationMessage turns the first field failure into a friendly message.
func validationMessage(errs validator.ValidationErrors) string {
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		param := err.Param()

		switch err.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return field + " must be a valid email address"
		case "min":
			return field + " must be at least " + param
		case "max", "lte":
			return field + " must be at most " + param
		case "gt":
			return field + " must be greater than " + param
		case "gte":
			return field + " must be at least " + param
		case "oneof":
			return field + " must be one of: " + param
		default:
			return field + " is invalid"
		}
	}
	return "Invalid input data"
}
