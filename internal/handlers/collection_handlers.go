package handlers

import (
	"database/sql"
	"math"
	"net/http"
	"strconv"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Collection Handlers ---
//

// GetMyCollection is the handler for GET /api/collection
// It returns every card the user owns with set and product context, plus
// running totals. An optional ?product=<slug> narrows it to one product.
func (h *Handlers) GetMyCollection(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Build Query ---
	query := `
		SELECT co.id, co.user_id, co.card_id, co.quantity, co.created_at, co.updated_at,
		       c.id, c.product_set_id, c.card_number, c.player, c.team, c.subset,
		       c.variant, c.front_image_url, c.back_image_url, c.book_value,
		       c.created_at, c.updated_at,
		       ps.name, p.name
		FROM card_ownership co
		JOIN cards c ON co.card_id = c.id
		JOIN product_sets ps ON c.product_set_id = ps.id
		JOIN products p ON ps.product_id = p.id
		WHERE co.user_id = ? AND co.quantity > 0`
	args := []interface{}{userID}

	if productSlug := c.Query("product"); productSlug != "" {
		query += " AND p.slug = ?"
		args = append(args, productSlug)
	}
	query += " ORDER BY p.name, ps.position, LENGTH(c.card_number), c.card_number"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load collection", err))
		return
	}
	defer rows.Close()

	// 3. --- Scan & Total ---
	owned := make([]models.CardOwnership, 0)
	totalQuantity := 0
	totalBookValue := 0.0
	for rows.Next() {
		var o models.CardOwnership
		var card models.Card
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CardID, &o.Quantity, &o.CreatedAt, &o.UpdatedAt,
			&card.ID, &card.ProductSetID, &card.CardNumber, &card.Player,
			&card.Team, &card.Subset, &card.Variant,
			&card.FrontImageURL, &card.BackImageURL, &card.BookValue,
			&card.CreatedAt, &card.UpdatedAt,
			&o.SetName, &o.ProductName,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan collection row", err))
			return
		}
		o.Card = &card
		owned = append(owned, o)

		totalQuantity += o.Quantity
		if card.BookValue != nil {
			totalBookValue += *card.BookValue * float64(o.Quantity)
		}
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating collection rows", err))
		return
	}

	// 4. --- Send Response ---
	c.JSON(http.StatusOK, gin.H{
		"cards": owned,
		"totals": gin.H{
			"distinctCards": len(owned),
			"totalQuantity": totalQuantity,
			"bookValue":     totalBookValue,
		},
	})
}

type checklistCard struct {
	ID            int64    `json:"id"`
	CardNumber    string   `json:"cardNumber"`
	Player        string   `json:"player"`
	Team          *string  `json:"team"`
	Subset        *string  `json:"subset"`
	Variant       *string  `json:"variant"`
	FrontImageURL *string  `json:"frontImageUrl"`
	BackImageURL  *string  `json:"backImageUrl"`
	BookValue     *float64 `json:"bookValue"`
	Owned         int      `json:"owned"`
}

type checklistSet struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	IsBase      bool            `json:"isBase"`
	OddsPerPack int             `json:"oddsPerPack"`
	Cards       []checklistCard `json:"cards"`
	OwnedCount  int             `json:"ownedCount"`
	TotalCount  int             `json:"totalCount"`
	Completion  float64         `json:"completionPct"`
}

// GetChecklist is the handler for GET /api/collection/checklist/:productId
// It lists every card of the product, owned or not, grouped by set with
// completion counts. This is the "which ones am I missing" view.
func (h *Handlers) GetChecklist(c *gin.Context) {
	// 1. --- Get IDs ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid product ID", err))
		return
	}

	// 2. --- Load the Product ---
	var productName, productSlug string
	err = h.DB.QueryRow(
		"SELECT name, slug FROM products WHERE id = ? AND status <> 'draft'",
		productID,
	).Scan(&productName, &productSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(c, apperrors.NotFound("Product not found"))
			return
		}
		respondError(c, apperrors.Internal("Failed to load product", err))
		return
	}

	// 3. --- Load Cards With Owned Quantities ---
	// LENGTH-first ordering sorts mostly-numeric card numbers naturally.
	rows, err := h.DB.Query(`
		SELECT ps.id, ps.name, ps.is_base, ps.odds_per_pack,
		       c.id, c.card_number, c.player, c.team, c.subset, c.variant,
		       c.front_image_url, c.back_image_url, c.book_value,
		       COALESCE(co.quantity, 0)
		FROM product_sets ps
		JOIN cards c ON c.product_set_id = ps.id
		LEFT JOIN card_ownership co ON co.card_id = c.id AND co.user_id = ?
		WHERE ps.product_id = ?
		ORDER BY ps.position, ps.id, LENGTH(c.card_number), c.card_number`,
		userID, productID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load checklist", err))
		return
	}
	defer rows.Close()

	// 4. --- Group Into Sets ---
	sets := make([]*checklistSet, 0)
	var current *checklistSet
	ownedDistinct := 0
	totalCards := 0

	for rows.Next() {
		var setID int64
		var setName string
		var isBase bool
		var odds int
		var card checklistCard
		if err := rows.Scan(
			&setID, &setName, &isBase, &odds,
			&card.ID, &card.CardNumber, &card.Player, &card.Team, &card.Subset,
			&card.Variant, &card.FrontImageURL, &card.BackImageURL,
			&card.BookValue, &card.Owned,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan checklist row", err))
			return
		}

		if current == nil || current.ID != setID {
			current = &checklistSet{
				ID:          setID,
				Name:        setName,
				IsBase:      isBase,
				OddsPerPack: odds,
				Cards:       make([]checklistCard, 0),
			}
			sets = append(sets, current)
		}

		current.Cards = append(current.Cards, card)
		current.TotalCount++
		totalCards++
		if card.Owned > 0 {
			current.OwnedCount++
			ownedDistinct++
		}
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating checklist rows", err))
		return
	}

	for _, set := range sets {
		set.Completion = completionPct(set.OwnedCount, set.TotalCount)
	}

	// 5. --- Send Response ---
	c.JSON(http.StatusOK, gin.H{
		"product": gin.H{
			"id":   productID,
			"name": productName,
			"slug": productSlug,
		},
		"sets": sets,
		"totals": gin.H{
			"ownedCards":    ownedDistinct,
			"totalCards":    totalCards,
			"completionPct": completionPct(ownedDistinct, totalCards),
		},
	})
}

// completionPct returns owned/total as a percentage with one decimal place.
func completionPct(owned, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(owned)/float64(total)*1000) / 10
}
