package handlers

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Storefront Handlers ---
//

// GetShopProducts is the handler for GET /api/shop/products
// It lists active products with their sets and card counts for the shop grid.
func (h *Handlers) GetShopProducts(c *gin.Context) {
	// 1. --- Load Active Products ---
	rows, err := h.DBReadOnly.Query(`
		SELECT id, slug, name, brand, sport, release_year, description,
		       pack_price, cards_per_pack, packs_per_box, box_price, status,
		       pack_image_url, box_image_url, created_at, updated_at
		FROM products
		WHERE status = 'active'
		ORDER BY release_year DESC, name ASC`)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load products", err))
		return
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	byID := make(map[int64]*models.Product)
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			respondError(c, apperrors.Internal("Failed to scan product row", err))
			return
		}
		p.Sets = make([]models.ProductSet, 0)
		products = append(products, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating product rows", err))
		return
	}

	// 2. --- Attach Sets With Card Counts ---
	setRows, err := h.DBReadOnly.Query(`
		SELECT ps.product_id, ps.id, ps.name, ps.is_base, ps.odds_per_pack,
		       ps.position, COUNT(c.id)
		FROM product_sets ps
		JOIN products p ON ps.product_id = p.id
		LEFT JOIN cards c ON c.product_set_id = ps.id
		WHERE p.status = 'active'
		GROUP BY ps.id, ps.product_id, ps.name, ps.is_base, ps.odds_per_pack, ps.position
		ORDER BY ps.product_id, ps.position, ps.id`)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load product sets", err))
		return
	}
	defer setRows.Close()

	for setRows.Next() {
		var productID int64
		var set models.ProductSet
		if err := setRows.Scan(&productID, &set.ID, &set.Name, &set.IsBase,
			&set.OddsPerPack, &set.Position, &set.CardCount); err != nil {
			respondError(c, apperrors.Internal("Failed to scan product set row", err))
			return
		}
		set.ProductID = productID
		if p, ok := byID[productID]; ok {
			p.Sets = append(p.Sets, set)
		}
	}
	if err := setRows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating product set rows", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetShopProductBySlug is the handler for GET /api/shop/products/:slug
// Archived products stay reachable here so collectors can still rip packs
// they already own; only drafts are hidden.
func (h *Handlers) GetShopProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var p models.Product
	row := h.DBReadOnly.QueryRow(`
		SELECT id, slug, name, brand, sport, release_year, description,
		       pack_price, cards_per_pack, packs_per_box, box_price, status,
		       pack_image_url, box_image_url, created_at, updated_at
		FROM products
		WHERE slug = ? AND status <> 'draft'`, slug)
	if err := scanProduct(row, &p); err != nil {
		if err == sql.ErrNoRows {
			respondError(c, apperrors.NotFound("Product not found"))
			return
		}
		respondError(c, apperrors.Internal("Failed to load product", err))
		return
	}

	sets, err := loadProductSets(h.DBReadOnly, p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	p.Sets = sets

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// BuyProductInput defines the JSON for buying sealed product.
type BuyProductInput struct {
	ProductID int64  `json:"productId" binding:"required,gt=0"`
	Unit      string `json:"unit" binding:"required,oneof=pack box"`
	Quantity  int    `json:"quantity" binding:"required,gt=0,lte=100"`
}

// BuyProduct is the handler for POST /api/shop/buy
// Wallet debit and inventory credit happen in one serializable transaction,
// so a failed debit never leaves granted packs behind.
func (h *Handlers) BuyProduct(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Bind & Validate JSON ---
	var input BuyProductInput
	if !bindJSON(c, &input) {
		return
	}

	var packsOwned int
	var newBalance float64
	var packsAdded int

	err := database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 3. --- Load the Product ---
		var product struct {
			Name        string
			PackPrice   float64
			BoxPrice    float64
			PacksPerBox int
		}
		err := tx.QueryRow(
			"SELECT name, pack_price, box_price, packs_per_box FROM products WHERE id = ? AND status = 'active'",
			input.ProductID,
		).Scan(&product.Name, &product.PackPrice, &product.BoxPrice, &product.PacksPerBox)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Product not found")
			}
			return apperrors.Internal("Failed to load product", err)
		}

		// 4. --- Price the Purchase ---
		var cost float64
		var txType string
		switch input.Unit {
		case "box":
			packsAdded = product.PacksPerBox * input.Quantity
			cost = product.BoxPrice * float64(input.Quantity)
			txType = "box_purchase"
		default:
			packsAdded = input.Quantity
			cost = product.PackPrice * float64(input.Quantity)
			txType = "pack_purchase"
		}

		// 5. --- Check Wallet Balance ---
		balance, err := h.GetWalletBalance(tx, userID)
		if err != nil {
			return apperrors.Internal("Failed to get wallet balance", err)
		}
		if balance < cost {
			return apperrors.InsufficientFunds("Insufficient wallet balance")
		}

		// 6. --- Debit the Wallet ---
		notes := fmt.Sprintf("Bought %d %s(s) of %s", input.Quantity, input.Unit, product.Name)
		if err := h.AddWalletTransaction(tx, userID, txType, -cost, notes); err != nil {
			return apperrors.Internal("Failed to record transaction", err)
		}
		newBalance = balance - cost

		// 7. --- Credit Sealed Inventory ---
		_, err = tx.Exec(`
			INSERT INTO sealed_inventory (user_id, product_id, packs_owned)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE packs_owned = packs_owned + ?`,
			userID, input.ProductID, packsAdded, packsAdded)
		if err != nil {
			return apperrors.Internal("Failed to credit inventory", err)
		}

		err = tx.QueryRow(
			"SELECT packs_owned FROM sealed_inventory WHERE user_id = ? AND product_id = ?",
			userID, input.ProductID,
		).Scan(&packsOwned)
		if err != nil {
			return apperrors.Internal("Failed to read inventory", err)
		}

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// 8. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message":        "Purchase successful",
		"packsAdded":     packsAdded,
		"packsOwned":     packsOwned,
		"currentBalance": newBalance,
	})
}

// GetMyInventory is the handler for GET /api/shop/inventory
// It returns the caller's unopened pack counts per product.
func (h *Handlers) GetMyInventory(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	rows, err := h.DB.Query(`
		SELECT si.id, si.user_id, si.product_id, si.packs_owned, si.updated_at,
		       p.name, p.slug, p.pack_image_url, p.pack_price
		FROM sealed_inventory si
		JOIN products p ON si.product_id = p.id
		WHERE si.user_id = ? AND si.packs_owned > 0
		ORDER BY p.name ASC`, userID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load inventory", err))
		return
	}
	defer rows.Close()

	inventory := make([]models.SealedInventory, 0)
	for rows.Next() {
		var item models.SealedInventory
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.PacksOwned,
			&item.UpdatedAt,
			&item.ProductName,
			&item.ProductSlug,
			&item.PackImageURL,
			&item.PackPrice,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan inventory row", err))
			return
		}
		inventory = append(inventory, item)
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating inventory rows", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": inventory})
}

// rowScanner lets product scans share code between QueryRow and Query results.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Brand,
		&p.Sport,
		&p.ReleaseYear,
		&p.Description,
		&p.PackPrice,
		&p.CardsPerPack,
		&p.PacksPerBox,
		&p.BoxPrice,
		&p.Status,
		&p.PackImageURL,
		&p.BoxImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// loadProductSets returns a product's sets in position order, each with its
// card count.
func loadProductSets(db *sql.DB, productID int64) ([]models.ProductSet, error) {
	rows, err := db.Query(`
		SELECT ps.id, ps.product_id, ps.name, ps.is_base, ps.odds_per_pack,
		       ps.position, ps.created_at, ps.updated_at, COUNT(c.id)
		FROM product_sets ps
		LEFT JOIN cards c ON c.product_set_id = ps.id
		WHERE ps.product_id = ?
		GROUP BY ps.id, ps.product_id, ps.name, ps.is_base, ps.odds_per_pack,
		         ps.position, ps.created_at, ps.updated_at
		ORDER BY ps.position, ps.id`, productID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load product sets", err)
	}
	defer rows.Close()

	sets := make([]models.ProductSet, 0)
	for rows.Next() {
		var set models.ProductSet
		if err := rows.Scan(
			&set.ID,
			&set.ProductID,
			&set.Name,
			&set.IsBase,
			&set.OddsPerPack,
			&set.Position,
			&set.CreatedAt,
			&set.UpdatedAt,
			&set.CardCount,
		); err != nil {
			return nil, apperrors.Internal("Failed to scan product set row", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Error iterating product set rows", err)
	}

	return sets, nil
}
