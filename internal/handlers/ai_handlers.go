package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// GenerateDescriptionInput defines the optional JSON body for description
// generation. An empty body uses the default model.
type GenerateDescriptionInput struct {
	Model string `json:"model"`
}

// GenerateProductDescription is the handler for
// POST /api/admin/products/:id/generate-description
//
// It asks the AI service for a storefront blurb built from the product's
// real sets and players. The text is returned for review, never written to
// the product; the admin decides whether to save it via the normal update.
func (h *Handlers) GenerateProductDescription(c *gin.Context) {
	// The service is optional; without an API key the endpoint reports so.
	if h.AIService == nil {
		respondError(c, &apperrors.AppError{
			Code:    "AI_UNAVAILABLE",
			Message: "AI description service is not configured",
			Status:  http.StatusServiceUnavailable,
		})
		return
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid product ID", err))
		return
	}

	var input GenerateDescriptionInput
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &input) {
			return
		}
	}

	description, err := h.AIService.GenerateProductDescription(c.Request.Context(), productID, input.Model)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, apperrors.NotFound("Product not found"))
			return
		}
		respondError(c, apperrors.Internal("AI service failed to generate a description", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description": description,
	})
}
