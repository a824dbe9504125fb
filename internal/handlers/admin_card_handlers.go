package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Card Handlers ---
//

// CardInput defines the JSON for creating or updating a single card.
type CardInput struct {
	CardNumber    string   `json:"cardNumber" binding:"required,min=1,max=20"`
	Player        string   `json:"player" binding:"required,min=2,max=100"`
	Team          *string  `json:"team"`
	Subset        *string  `json:"subset"`
	Variant       *string  `json:"variant"`
	FrontImageURL *string  `json:"frontImageUrl"`
	BackImageURL  *string  `json:"backImageUrl"`
	BookValue     *float64 `json:"bookValue" binding:"omitempty,gte=0"`
}

// CreateCard is the handler for POST /api/admin/sets/:id/cards
func (h *Handlers) CreateCard(c *gin.Context) {
	setID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid set ID", err))
		return
	}

	var input CardInput
	if !bindJSON(c, &input) {
		return
	}

	var cardID int64
	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		if err := checkSetExists(tx, setID); err != nil {
			return err
		}

		// Card numbers are unique within a set.
		var existingID int64
		err := tx.QueryRow(
			"SELECT id FROM cards WHERE product_set_id = ? AND card_number = ?",
			setID, input.CardNumber).Scan(&existingID)
		if err == nil {
			return apperrors.Conflict(fmt.Sprintf("Card number %s already exists in this set", input.CardNumber))
		}
		if err != sql.ErrNoRows {
			return apperrors.Internal("Failed to check card number", err)
		}

		cardID, err = insertCard(tx, setID, &input)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Card created",
		"id":      cardID,
	})
}

// BulkCardsInput defines the JSON for the bulk card endpoint.
type BulkCardsInput struct {
	Cards []CardInput `json:"cards" binding:"required,min=1,max=500,dive"`
}

// BulkCreateCards is the handler for POST /api/admin/sets/:id/cards/bulk
// The whole payload goes in as one transaction. A single duplicate number,
// in the payload or already in the set, rejects the entire batch so a
// checklist import never half-lands.
func (h *Handlers) BulkCreateCards(c *gin.Context) {
	setID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid set ID", err))
		return
	}

	var input BulkCardsInput
	if !bindJSON(c, &input) {
		return
	}

	// 1. --- Check for Duplicates Within the Payload ---
	seen := make(map[string]bool, len(input.Cards))
	for _, card := range input.Cards {
		if seen[card.CardNumber] {
			respondError(c, apperrors.Conflict(fmt.Sprintf("Card number %s appears twice in the payload", card.CardNumber)))
			return
		}
		seen[card.CardNumber] = true
	}

	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		if err := checkSetExists(tx, setID); err != nil {
			return err
		}

		// 2. --- Check for Duplicates Already in the Set ---
		placeholders := make([]string, 0, len(input.Cards))
		args := []interface{}{setID}
		for _, card := range input.Cards {
			placeholders = append(placeholders, "?")
			args = append(args, card.CardNumber)
		}
		query := fmt.Sprintf(
			"SELECT card_number FROM cards WHERE product_set_id = ? AND card_number IN (%s) LIMIT 1",
			strings.Join(placeholders, ","))

		var clash string
		err := tx.QueryRow(query, args...).Scan(&clash)
		if err == nil {
			return apperrors.Conflict(fmt.Sprintf("Card number %s already exists in this set", clash))
		}
		if err != sql.ErrNoRows {
			return apperrors.Internal("Failed to check card numbers", err)
		}

		// 3. --- Insert Every Card ---
		for i := range input.Cards {
			if _, err := insertCard(tx, setID, &input.Cards[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Cards created",
		"created": len(input.Cards),
	})
}

// UpdateCard is the handler for PUT /api/admin/cards/:id
func (h *Handlers) UpdateCard(c *gin.Context) {
	cardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid card ID", err))
		return
	}

	var input CardInput
	if !bindJSON(c, &input) {
		return
	}

	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 1. --- Load the Card ---
		var setID int64
		var currentNumber string
		err := tx.QueryRow("SELECT product_set_id, card_number FROM cards WHERE id = ?", cardID).
			Scan(&setID, &currentNumber)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Card not found")
			}
			return apperrors.Internal("Failed to load card", err)
		}

		// 2. --- Check Renumbering for Clashes ---
		if input.CardNumber != currentNumber {
			var existingID int64
			err := tx.QueryRow(
				"SELECT id FROM cards WHERE product_set_id = ? AND card_number = ? AND id <> ?",
				setID, input.CardNumber, cardID).Scan(&existingID)
			if err == nil {
				return apperrors.Conflict(fmt.Sprintf("Card number %s already exists in this set", input.CardNumber))
			}
			if err != sql.ErrNoRows {
				return apperrors.Internal("Failed to check card number", err)
			}
		}

		// 3. --- Update the Card ---
		_, err = tx.Exec(`
			UPDATE cards
			SET card_number = ?, player = ?, team = ?, subset = ?, variant = ?,
			    front_image_url = ?, back_image_url = ?, book_value = ?, updated_at = ?
			WHERE id = ?`,
			input.CardNumber, input.Player, input.Team, input.Subset, input.Variant,
			input.FrontImageURL, input.BackImageURL, input.BookValue, time.Now(), cardID)
		if err != nil {
			return apperrors.Internal("Failed to update card", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card updated"})
}

// DeleteCard is the handler for DELETE /api/admin/cards/:id
// A card that collectors have pulled is part of their collections and can
// only be edited, never deleted.
func (h *Handlers) DeleteCard(c *gin.Context) {
	cardID := c.Param("id")

	var owners int
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM card_ownership WHERE card_id = ? AND quantity > 0",
		cardID).Scan(&owners)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check ownership", err))
		return
	}
	if owners > 0 {
		respondError(c, apperrors.Conflict("Card is in collections and cannot be deleted"))
		return
	}

	result, err := h.DB.Exec("DELETE FROM cards WHERE id = ?", cardID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to delete card", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		respondError(c, apperrors.NotFound("Card not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}

func checkSetExists(tx *sql.Tx, setID int64) error {
	var id int64
	err := tx.QueryRow("SELECT id FROM product_sets WHERE id = ?", setID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("Product set not found")
		}
		return apperrors.Internal("Failed to check set", err)
	}
	return nil
}

func insertCard(tx *sql.Tx, setID int64, input *CardInput) (int64, error) {
	now := time.Now()
	res, err := tx.Exec(`
		INSERT INTO cards
		(product_set_id, card_number, player, team, subset, variant,
		 front_image_url, back_image_url, book_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		setID, input.CardNumber, input.Player, input.Team, input.Subset,
		input.Variant, input.FrontImageURL, input.BackImageURL, input.BookValue,
		now, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to create card", err)
	}

	cardID, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.Internal("Failed to get new card ID", err)
	}
	return cardID, nil
}
