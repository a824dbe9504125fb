package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Admin: Product Handlers ---
//

// ProductInput defines the JSON for creating or updating a product.
type ProductInput struct {
	Name         string   `json:"name" binding:"required,min=2,max=150"`
	Brand        string   `json:"brand" binding:"required,min=2,max=100"`
	Sport        string   `json:"sport" binding:"required,min=2,max=50"`
	ReleaseYear  int      `json:"releaseYear" binding:"required,gte=1900,lte=2100"`
	Description  string   `json:"description"`
	PackPrice    float64  `json:"packPrice" binding:"required,gt=0"`
	CardsPerPack int      `json:"cardsPerPack" binding:"required,gt=0,lte=50"`
	PacksPerBox  int      `json:"packsPerBox" binding:"required,gt=0,lte=100"`
	BoxPrice     float64  `json:"boxPrice" binding:"required,gt=0"`
	PackImageURL *string  `json:"packImageUrl"`
	BoxImageURL  *string  `json:"boxImageUrl"`
}

// CreateProduct is the handler for POST /api/admin/products
// Products are born as drafts; they appear in the shop only after an
// explicit activate.
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input ProductInput
	if !bindJSON(c, &input) {
		return
	}

	productSlug := slug.Make(fmt.Sprintf("%d %s %s", input.ReleaseYear, input.Brand, input.Name))

	var productID int64
	err := database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 2. --- Check Slug Uniqueness ---
		var existingID int64
		err := tx.QueryRow("SELECT id FROM products WHERE slug = ?", productSlug).Scan(&existingID)
		if err == nil {
			return apperrors.Conflict("A product with a similar name already exists")
		}
		if err != sql.ErrNoRows {
			return apperrors.Internal("Failed to check slug", err)
		}

		// 3. --- Insert the Product ---
		now := time.Now()
		res, err := tx.Exec(`
			INSERT INTO products
			(slug, name, brand, sport, release_year, description, pack_price,
			 cards_per_pack, packs_per_box, box_price, status,
			 pack_image_url, box_image_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'draft', ?, ?, ?, ?)`,
			productSlug, input.Name, input.Brand, input.Sport, input.ReleaseYear,
			input.Description, input.PackPrice, input.CardsPerPack,
			input.PacksPerBox, input.BoxPrice,
			input.PackImageURL, input.BoxImageURL, now, now)
		if err != nil {
			return apperrors.Internal("Failed to create product", err)
		}

		productID, err = res.LastInsertId()
		if err != nil {
			return apperrors.Internal("Failed to get new product ID", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created",
		"id":      productID,
		"slug":    productSlug,
	})
}

// GetAdminProducts is the handler for GET /api/admin/products
// Unlike the shop listing, this includes drafts and archived products.
func (h *Handlers) GetAdminProducts(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, slug, name, brand, sport, release_year, description,
		       pack_price, cards_per_pack, packs_per_box, box_price, status,
		       pack_image_url, box_image_url, created_at, updated_at
		FROM products
		ORDER BY created_at DESC`)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load products", err))
		return
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			respondError(c, apperrors.Internal("Failed to scan product row", err))
			return
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating product rows", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetAdminProduct is the handler for GET /api/admin/products/:id
// It returns the product with its sets and every card, the editing view.
func (h *Handlers) GetAdminProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid product ID", err))
		return
	}

	var p models.Product
	row := h.DB.QueryRow(`
		SELECT id, slug, name, brand, sport, release_year, description,
		       pack_price, cards_per_pack, packs_per_box, box_price, status,
		       pack_image_url, box_image_url, created_at, updated_at
		FROM products
		WHERE id = ?`, productID)
	if err := scanProduct(row, &p); err != nil {
		if err == sql.ErrNoRows {
			respondError(c, apperrors.NotFound("Product not found"))
			return
		}
		respondError(c, apperrors.Internal("Failed to load product", err))
		return
	}

	sets, err := loadProductSets(h.DB, p.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Attach cards per set for the admin editor.
	cardRows, err := h.DB.Query(`
		SELECT c.id, c.product_set_id, c.card_number, c.player, c.team, c.subset,
		       c.variant, c.front_image_url, c.back_image_url, c.book_value,
		       c.created_at, c.updated_at
		FROM cards c
		JOIN product_sets ps ON c.product_set_id = ps.id
		WHERE ps.product_id = ?
		ORDER BY c.product_set_id, LENGTH(c.card_number), c.card_number`, productID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load cards", err))
		return
	}
	defer cardRows.Close()

	cardsBySet := make(map[int64][]models.Card)
	for cardRows.Next() {
		var card models.Card
		if err := cardRows.Scan(
			&card.ID, &card.ProductSetID, &card.CardNumber, &card.Player,
			&card.Team, &card.Subset, &card.Variant,
			&card.FrontImageURL, &card.BackImageURL, &card.BookValue,
			&card.CreatedAt, &card.UpdatedAt,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan card row", err))
			return
		}
		cardsBySet[card.ProductSetID] = append(cardsBySet[card.ProductSetID], card)
	}
	if err := cardRows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating card rows", err))
		return
	}

	for i := range sets {
		sets[i].Cards = cardsBySet[sets[i].ID]
	}
	p.Sets = sets

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// UpdateProduct is the handler for PUT /api/admin/products/:id
// The slug is set at creation and never regenerated, so shop links and the
// live feed keep working after a rename.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input ProductInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.DB.Exec(`
		UPDATE products
		SET name = ?, brand = ?, sport = ?, release_year = ?, description = ?,
		    pack_price = ?, cards_per_pack = ?, packs_per_box = ?, box_price = ?,
		    pack_image_url = ?, box_image_url = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, input.Brand, input.Sport, input.ReleaseYear, input.Description,
		input.PackPrice, input.CardsPerPack, input.PacksPerBox, input.BoxPrice,
		input.PackImageURL, input.BoxImageURL, time.Now(), productID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update product", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		respondError(c, apperrors.NotFound("Product not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /api/admin/products/:id
// Only drafts can be deleted. Once a product has been activated, collectors
// may own its packs and cards, so it gets archived instead.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM products WHERE id = ? AND status = 'draft'", productID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to delete product", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		// Either it does not exist or it is past draft.
		var status string
		err := h.DB.QueryRow("SELECT status FROM products WHERE id = ?", productID).Scan(&status)
		if err == sql.ErrNoRows {
			respondError(c, apperrors.NotFound("Product not found"))
			return
		}
		if err != nil {
			respondError(c, apperrors.Internal("Failed to check product", err))
			return
		}
		respondError(c, apperrors.Conflict("Only draft products can be deleted; archive it instead"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ActivateProduct is the handler for PATCH /api/admin/products/:id/activate
// A product cannot go live until its base set can fill a whole pack, which
// keeps misconfigured products out of the shop.
func (h *Handlers) ActivateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid product ID", err))
		return
	}

	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 1. --- Load the Product ---
		var status string
		var cardsPerPack int
		err := tx.QueryRow("SELECT status, cards_per_pack FROM products WHERE id = ?", productID).
			Scan(&status, &cardsPerPack)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Product not found")
			}
			return apperrors.Internal("Failed to load product", err)
		}
		if status == "active" {
			return apperrors.Conflict("Product is already active")
		}

		// 2. --- Check the Base Set Can Fill a Pack ---
		var baseCards int
		err = tx.QueryRow(`
			SELECT COUNT(c.id)
			FROM product_sets ps
			LEFT JOIN cards c ON c.product_set_id = ps.id
			WHERE ps.product_id = ? AND ps.is_base = 1`, productID).Scan(&baseCards)
		if err != nil {
			return apperrors.Internal("Failed to count base cards", err)
		}
		if baseCards < cardsPerPack {
			return apperrors.Conflict(fmt.Sprintf(
				"Base set needs at least %d cards before this product can be activated", cardsPerPack))
		}

		// 3. --- Flip the Status ---
		_, err = tx.Exec("UPDATE products SET status = 'active', updated_at = ? WHERE id = ?",
			time.Now(), productID)
		if err != nil {
			return apperrors.Internal("Failed to activate product", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product activated"})
}

// ArchiveProduct is the handler for PATCH /api/admin/products/:id/archive
// Archived products leave the shop but stay openable by their owners.
func (h *Handlers) ArchiveProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := h.DB.Exec(
		"UPDATE products SET status = 'archived', updated_at = ? WHERE id = ? AND status = 'active'",
		time.Now(), productID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to archive product", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		respondError(c, apperrors.NotFound("Product not found or is not active"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product archived"})
}

//
// --- Admin: Product Set Handlers ---
//

// ProductSetInput defines the JSON for creating or updating a set.
// IsBase is a pointer so an explicit false still binds.
type ProductSetInput struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	IsBase      *bool  `json:"isBase" binding:"required"`
	OddsPerPack int    `json:"oddsPerPack" binding:"omitempty,gte=0,lte=100000"`
	Position    int    `json:"position" binding:"omitempty,gte=0"`
}

func validateSetInput(input *ProductSetInput) error {
	if *input.IsBase && input.OddsPerPack != 0 {
		return apperrors.Validation("Base sets do not have pull odds", nil)
	}
	if !*input.IsBase && input.OddsPerPack < 1 {
		return apperrors.Validation("Insert sets need odds of at least 1 (meaning 1:1)", nil)
	}
	return nil
}

// CreateProductSet is the handler for POST /api/admin/products/:id/sets
// Each product has exactly one base set; creating a second fails.
func (h *Handlers) CreateProductSet(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid product ID", err))
		return
	}

	var input ProductSetInput
	if !bindJSON(c, &input) {
		return
	}
	if err := validateSetInput(&input); err != nil {
		respondError(c, err)
		return
	}

	var setID int64
	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 1. --- Check the Product Exists ---
		var exists int64
		err := tx.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&exists)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Product not found")
			}
			return apperrors.Internal("Failed to check product", err)
		}

		// 2. --- Enforce One Base Set ---
		if *input.IsBase {
			var baseID int64
			err := tx.QueryRow(
				"SELECT id FROM product_sets WHERE product_id = ? AND is_base = 1",
				productID).Scan(&baseID)
			if err == nil {
				return apperrors.Conflict("Product already has a base set")
			}
			if err != sql.ErrNoRows {
				return apperrors.Internal("Failed to check base set", err)
			}
		}

		// 3. --- Insert the Set ---
		now := time.Now()
		res, err := tx.Exec(`
			INSERT INTO product_sets
			(product_id, name, is_base, odds_per_pack, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			productID, input.Name, *input.IsBase, input.OddsPerPack, input.Position, now, now)
		if err != nil {
			return apperrors.Internal("Failed to create set", err)
		}

		setID, err = res.LastInsertId()
		if err != nil {
			return apperrors.Internal("Failed to get new set ID", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Set created",
		"id":      setID,
	})
}

// UpdateProductSet is the handler for PUT /api/admin/sets/:id
func (h *Handlers) UpdateProductSet(c *gin.Context) {
	setID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid set ID", err))
		return
	}

	var input ProductSetInput
	if !bindJSON(c, &input) {
		return
	}
	if err := validateSetInput(&input); err != nil {
		respondError(c, err)
		return
	}

	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 1. --- Load the Set ---
		var productID int64
		err := tx.QueryRow("SELECT product_id FROM product_sets WHERE id = ?", setID).Scan(&productID)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Product set not found")
			}
			return apperrors.Internal("Failed to load set", err)
		}

		// 2. --- Enforce One Base Set ---
		if *input.IsBase {
			var baseID int64
			err := tx.QueryRow(
				"SELECT id FROM product_sets WHERE product_id = ? AND is_base = 1 AND id <> ?",
				productID, setID).Scan(&baseID)
			if err == nil {
				return apperrors.Conflict("Product already has a base set")
			}
			if err != sql.ErrNoRows {
				return apperrors.Internal("Failed to check base set", err)
			}
		}

		// 3. --- Update the Set ---
		_, err = tx.Exec(`
			UPDATE product_sets
			SET name = ?, is_base = ?, odds_per_pack = ?, position = ?, updated_at = ?
			WHERE id = ?`,
			input.Name, *input.IsBase, input.OddsPerPack, input.Position, time.Now(), setID)
		if err != nil {
			return apperrors.Internal("Failed to update set", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Set updated"})
}

// DeleteProductSet is the handler for DELETE /api/admin/sets/:id
// A set with cards cannot be deleted; the cards go first.
func (h *Handlers) DeleteProductSet(c *gin.Context) {
	setID := c.Param("id")

	var cardCount int
	err := h.DB.QueryRow("SELECT COUNT(*) FROM cards WHERE product_set_id = ?", setID).Scan(&cardCount)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count cards", err))
		return
	}
	if cardCount > 0 {
		respondError(c, apperrors.Conflict("Set still has cards; delete them first"))
		return
	}

	result, err := h.DB.Exec("DELETE FROM product_sets WHERE id = ?", setID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to delete set", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		respondError(c, apperrors.NotFound("Product set not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Set deleted"})
}
