package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Settings Handlers ---
//

// Setting mirrors one row of the settings table.
type Setting struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description"`
}

// GetSettings is the handler for GET /api/admin/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	rows, err := h.DB.Query("SELECT setting_key, setting_value, description FROM settings ORDER BY setting_key")
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load settings", err))
		return
	}
	defer rows.Close()

	settings := make([]Setting, 0)
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description); err != nil {
			respondError(c, apperrors.Internal("Failed to scan setting row", err))
			return
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating setting rows", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettingInput defines the JSON for changing one setting.
type UpdateSettingInput struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting is the handler for PATCH /api/admin/settings
// Keys are fixed at install time; this only changes values, so a typo in
// the key can never silently create a new setting.
func (h *Handlers) UpdateSetting(c *gin.Context) {
	var input UpdateSettingInput
	if !bindJSON(c, &input) {
		return
	}

	// Known keys get their values sanity-checked.
	switch input.Key {
	case "maintenance_mode":
		if input.Value != "true" && input.Value != "false" {
			respondError(c, apperrors.Validation("maintenance_mode must be true or false", nil))
			return
		}
	case "signup_bonus":
		if v, err := strconv.ParseFloat(input.Value, 64); err != nil || v < 0 {
			respondError(c, apperrors.Validation("signup_bonus must be a non-negative number", err))
			return
		}
	}

	result, err := h.DB.Exec(
		"UPDATE settings SET setting_value = ? WHERE setting_key = ?",
		input.Value, input.Key)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update setting", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		respondError(c, apperrors.NotFound("Setting not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Setting updated"})
}

//
// --- Admin: Dashboard Stats ---
//

type AdminStats struct {
	TotalCollectors  int     `json:"totalCollectors"`
	ActiveProducts   int     `json:"activeProducts"`
	DraftProducts    int     `json:"draftProducts"`
	ArchivedProducts int     `json:"archivedProducts"`
	PacksRippedToday int     `json:"packsRippedToday"`
	InsertsPulled24h int     `json:"insertsPulled24h"`
	UnopenedPacks    int     `json:"unopenedPacks"`
	WalletLiability  float64 `json:"walletLiability"`
}

// GetAdminStats returns KPI data for the admin dashboard
// GET /api/admin/stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := AdminStats{}

	// 1. Active Collectors
	err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'collector' AND status = 'active'").Scan(&stats.TotalCollectors)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count collectors", err))
		return
	}

	// 2. Products by Status
	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE status = 'active'").Scan(&stats.ActiveProducts)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count active products", err))
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE status = 'draft'").Scan(&stats.DraftProducts)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count draft products", err))
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE status = 'archived'").Scan(&stats.ArchivedProducts)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count archived products", err))
		return
	}

	// 3. Rip Activity
	err = h.DB.QueryRow("SELECT COUNT(*) FROM rip_events WHERE created_at >= CURDATE()").Scan(&stats.PacksRippedToday)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count packs ripped today", err))
		return
	}
	err = h.DB.QueryRow("SELECT COALESCE(SUM(insert_count), 0) FROM rip_events WHERE created_at >= NOW() - INTERVAL 1 DAY").Scan(&stats.InsertsPulled24h)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count insert pulls", err))
		return
	}

	// 4. Economy
	err = h.DB.QueryRow("SELECT COALESCE(SUM(packs_owned), 0) FROM sealed_inventory").Scan(&stats.UnopenedPacks)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to count unopened packs", err))
		return
	}
	// Total credit held across all wallets.
	err = h.DB.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions").Scan(&stats.WalletLiability)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to sum wallet balances", err))
		return
	}

	c.JSON(http.StatusOK, stats)
}

//
// --- Admin: Pack Grants ---
//

// GrantPacksInput defines the JSON for granting sealed packs to a user.
type GrantPacksInput struct {
	UserEmail string `json:"userEmail" binding:"required,email"`
	Quantity  int    `json:"quantity" binding:"required,gt=0,lte=1000"`
}

// GrantPacks is the handler for POST /api/admin/products/:id/grant-packs
// It adds sealed inventory without touching the wallet, for promos and
// support make-goods. The recipient gets a notification.
func (h *Handlers) GrantPacks(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("Invalid product ID", err))
		return
	}

	var input GrantPacksInput
	if !bindJSON(c, &input) {
		return
	}

	var packsOwned int
	err = database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 1. --- Load the Product ---
		var productName string
		err := tx.QueryRow(
			"SELECT name FROM products WHERE id = ? AND status <> 'draft'",
			productID).Scan(&productName)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("Product not found")
			}
			return apperrors.Internal("Failed to load product", err)
		}

		// 2. --- Look Up the Recipient ---
		var userID int64
		err = tx.QueryRow("SELECT id FROM users WHERE email = ?", input.UserEmail).Scan(&userID)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NotFound("User not found")
			}
			return apperrors.Internal("Failed to look up user", err)
		}

		// 3. --- Credit Sealed Inventory ---
		_, err = tx.Exec(`
			INSERT INTO sealed_inventory (user_id, product_id, packs_owned)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE packs_owned = packs_owned + ?`,
			userID, productID, input.Quantity, input.Quantity)
		if err != nil {
			return apperrors.Internal("Failed to credit inventory", err)
		}

		err = tx.QueryRow(
			"SELECT packs_owned FROM sealed_inventory WHERE user_id = ? AND product_id = ?",
			userID, productID).Scan(&packsOwned)
		if err != nil {
			return apperrors.Internal("Failed to read inventory", err)
		}

		// 4. --- Notify the Recipient ---
		message := fmt.Sprintf("You received %d pack(s) of %s!", input.Quantity, productName)
		if err := h.AddNotification(tx, userID, "system", message, "/inventory"); err != nil {
			return apperrors.Internal("Failed to add notification", err)
		}

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Packs granted",
		"packsOwned": packsOwned,
	})
}
