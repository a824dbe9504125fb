package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/cardrip/cardrip-api/internal/rip"
	"github.com/gin-gonic/gin"
)

//
// --- Pack Opening ---
//

// OpenPackInput defines the JSON for opening one sealed pack.
type OpenPackInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

// OpenPack is the handler for POST /api/rip/open.
//
// It converts one unit of sealed inventory into card pulls inside a single
// serializable transaction: the inventory decrement, the random selection,
// the ownership upserts and the feed event all commit together or not at
// all. Concurrent opens by the same user serialize on the FOR UPDATE lock,
// so two requests can never both consume the last pack.
func (h *Handlers) OpenPack(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Bind & Validate JSON ---
	var input OpenPackInput
	if !bindJSON(c, &input) {
		return
	}

	rng := h.rng()

	var result *models.RipResult
	var event *models.RipEvent

	err := database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 3. --- Load the Product ---
		// Draft products have never sold packs; anything else stays
		// openable even after being archived.
		var product struct {
			ID           int64
			Name         string
			Slug         string
			CardsPerPack int
			PackImageURL *string
		}
		err := tx.QueryRow(
			"SELECT id, name, slug, cards_per_pack, pack_image_url FROM products WHERE id = ? AND status <> 'draft'",
			input.ProductID,
		).Scan(&product.ID, &product.Name, &product.Slug, &product.CardsPerPack, &product.PackImageURL)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Product not found")
			}
			return apperrors.Internal("Failed to load product", err)
		}

		// 4. --- Check & Lock Sealed Inventory ---
		var packsOwned int
		err = tx.QueryRow(
			"SELECT packs_owned FROM sealed_inventory WHERE user_id = ? AND product_id = ? FOR UPDATE",
			userID, product.ID,
		).Scan(&packsOwned)
		if err != nil && err != sql.ErrNoRows {
			return apperrors.Internal("Failed to check inventory", err)
		}
		if err == sql.ErrNoRows || packsOwned <= 0 {
			return apperrors.InsufficientInventory("You do not own any packs of this product.")
		}

		// 5. --- Consume One Pack ---
		_, err = tx.Exec(
			"UPDATE sealed_inventory SET packs_owned = packs_owned - 1 WHERE user_id = ? AND product_id = ?",
			userID, product.ID,
		)
		if err != nil {
			return apperrors.Internal("Failed to consume pack", err)
		}

		// 6. --- Load Card Pools & Compose the Pack ---
		baseIDs, insertPools, err := loadCardPools(tx, product.ID)
		if err != nil {
			return err
		}

		pulls, err := rip.ComposePack(rng, product.CardsPerPack, baseIDs, insertPools)
		if err != nil {
			if errors.Is(err, rip.ErrNotEnoughBaseCards) {
				return apperrors.Configuration("Not enough base cards")
			}
			return apperrors.Internal("Failed to compose pack", err)
		}

		// Present base cards first, inserts last.
		ordered := make([]rip.Pull, 0, len(pulls))
		for _, p := range pulls {
			if !p.IsInsert {
				ordered = append(ordered, p)
			}
		}
		for _, p := range pulls {
			if p.IsInsert {
				ordered = append(ordered, p)
			}
		}

		cardsByID, err := loadCards(tx, ordered)
		if err != nil {
			return err
		}

		// 7. --- Apply Ownership Upserts ---
		pulled := make([]models.PulledCard, 0, len(ordered))
		insertCount := 0
		totalValue := 0.0

		for _, p := range ordered {
			card, ok := cardsByID[p.CardID]
			if !ok {
				return apperrors.Internal("Selected card vanished during open", nil)
			}

			_, err = tx.Exec(`
				INSERT INTO card_ownership (user_id, card_id, quantity)
				VALUES (?, ?, 1)
				ON DUPLICATE KEY UPDATE quantity = quantity + 1`,
				userID, p.CardID)
			if err != nil {
				return apperrors.Internal("Failed to record ownership", err)
			}

			var ownedAfter int
			err = tx.QueryRow(
				"SELECT quantity FROM card_ownership WHERE user_id = ? AND card_id = ?",
				userID, p.CardID,
			).Scan(&ownedAfter)
			if err != nil {
				return apperrors.Internal("Failed to read ownership", err)
			}

			pulled = append(pulled, models.PulledCard{
				ID:            card.ID,
				CardNumber:    card.CardNumber,
				Player:        card.Player,
				Team:          card.Team,
				Subset:        card.Subset,
				Variant:       card.Variant,
				FrontImageURL: card.FrontImageURL,
				BackImageURL:  card.BackImageURL,
				BookValue:     card.BookValue,
				IsInsert:      p.IsInsert,
				OwnedAfter:    ownedAfter,
			})

			if p.IsInsert {
				insertCount++
			}
			if card.BookValue != nil {
				totalValue += *card.BookValue
			}
		}

		// 8. --- Record the Rip Event ---
		summary, err := json.Marshal(highlightCards(pulled))
		if err != nil {
			return apperrors.Internal("Failed to build rip summary", err)
		}

		now := time.Now()
		res, err := tx.Exec(`
			INSERT INTO rip_events (user_id, product_id, insert_count, total_value, summary, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			userID, product.ID, insertCount, totalValue, summary, now)
		if err != nil {
			return apperrors.Internal("Failed to record rip event", err)
		}
		eventID, err := res.LastInsertId()
		if err != nil {
			return apperrors.Internal("Failed to get rip event ID", err)
		}

		var displayName string
		if err := tx.QueryRow("SELECT display_name FROM users WHERE id = ?", userID).Scan(&displayName); err != nil {
			return apperrors.Internal("Failed to load user for feed", err)
		}

		// 9. --- Notify on Insert Pulls ---
		if insertCount > 0 {
			message := fmt.Sprintf("You pulled an insert from %s!", product.Name)
			if insertCount > 1 {
				message = fmt.Sprintf("You pulled %d inserts from %s!", insertCount, product.Name)
			}
			if err := h.AddNotification(tx, userID, "pull", message, "/collection"); err != nil {
				return apperrors.Internal("Failed to add notification", err)
			}
		}

		result = &models.RipResult{
			Ok:           true,
			ProductID:    product.ID,
			PackImageURL: product.PackImageURL,
			CardsPerPack: product.CardsPerPack,
			Cards:        pulled,
		}
		event = &models.RipEvent{
			ID:          eventID,
			UserID:      userID,
			ProductID:   product.ID,
			InsertCount: insertCount,
			TotalValue:  totalValue,
			Summary:     summary,
			CreatedAt:   now,
			DisplayName: displayName,
			ProductName: product.Name,
			ProductSlug: product.Slug,
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// 10. --- Fan Out After Commit ---
	// The side channels never fail a committed rip.
	h.Hub.BroadcastRip(event)
	h.Publisher.PublishRip(event)

	c.JSON(http.StatusOK, result)
}

// loadCardPools returns the base pool and the insert pools of a product in
// configured set order. A product with no base-flagged set is misconfigured
// and cannot be opened.
func loadCardPools(tx *sql.Tx, productID int64) ([]int64, []rip.InsertPool, error) {
	rows, err := tx.Query(
		"SELECT id, is_base, odds_per_pack FROM product_sets WHERE product_id = ? ORDER BY position, id",
		productID)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to load product sets", err)
	}
	defer rows.Close()

	type setInfo struct {
		ID     int64
		IsBase bool
		Odds   int
	}
	var sets []setInfo
	for rows.Next() {
		var s setInfo
		if err := rows.Scan(&s.ID, &s.IsBase, &s.Odds); err != nil {
			return nil, nil, apperrors.Internal("Failed to scan product set", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.Internal("Error iterating product sets", err)
	}

	var baseSetID int64
	baseFound := false
	for _, s := range sets {
		if s.IsBase {
			baseSetID = s.ID
			baseFound = true
			break
		}
	}
	if !baseFound {
		return nil, nil, apperrors.Configuration("No Base ProductSet")
	}

	cardRows, err := tx.Query(`
		SELECT c.product_set_id, c.id
		FROM cards c
		JOIN product_sets ps ON c.product_set_id = ps.id
		WHERE ps.product_id = ?
		ORDER BY c.product_set_id, c.id`, productID)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to load card pools", err)
	}
	defer cardRows.Close()

	poolBySet := make(map[int64][]int64)
	for cardRows.Next() {
		var setID, cardID int64
		if err := cardRows.Scan(&setID, &cardID); err != nil {
			return nil, nil, apperrors.Internal("Failed to scan pool card", err)
		}
		poolBySet[setID] = append(poolBySet[setID], cardID)
	}
	if err := cardRows.Err(); err != nil {
		return nil, nil, apperrors.Internal("Error iterating pool cards", err)
	}

	var insertPools []rip.InsertPool
	for _, s := range sets {
		if s.IsBase {
			continue
		}
		insertPools = append(insertPools, rip.InsertPool{
			SetID:       s.ID,
			OddsPerPack: s.Odds,
			CardIDs:     poolBySet[s.ID],
		})
	}

	return poolBySet[baseSetID], insertPools, nil
}

// loadCards fetches display metadata for the selected cards.
func loadCards(tx *sql.Tx, pulls []rip.Pull) (map[int64]models.Card, error) {
	cards := make(map[int64]models.Card, len(pulls))
	if len(pulls) == 0 {
		return cards, nil
	}

	placeholders := make([]string, len(pulls))
	args := make([]interface{}, len(pulls))
	for i, p := range pulls {
		placeholders[i] = "?"
		args[i] = p.CardID
	}

	query := fmt.Sprintf(`
		SELECT id, card_number, player, team, subset, variant,
		       front_image_url, back_image_url, book_value
		FROM cards
		WHERE id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, apperrors.Internal("Failed to load pulled cards", err)
	}
	defer rows.Close()

	for rows.Next() {
		var card models.Card
		if err := rows.Scan(
			&card.ID,
			&card.CardNumber,
			&card.Player,
			&card.Team,
			&card.Subset,
			&card.Variant,
			&card.FrontImageURL,
			&card.BackImageURL,
			&card.BookValue,
		); err != nil {
			return nil, apperrors.Internal("Failed to scan pulled card", err)
		}
		cards[card.ID] = card
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Error iterating pulled cards", err)
	}

	return cards, nil
}

// highlightCards picks what the feed shows for a pack: every insert, or
// the single most valuable card when nothing hit.
func highlightCards(pulled []models.PulledCard) []models.PulledCard {
	highlights := make([]models.PulledCard, 0, 2)
	for _, pc := range pulled {
		if pc.IsInsert {
			highlights = append(highlights, pc)
		}
	}
	if len(highlights) > 0 {
		return highlights
	}
	if len(pulled) == 0 {
		return highlights
	}

	best := 0
	for i, pc := range pulled {
		if pc.BookValue == nil {
			continue
		}
		if pulled[best].BookValue == nil || *pc.BookValue > *pulled[best].BookValue {
			best = i
		}
	}
	return append(highlights, pulled[best])
}
