package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Wallet Core Functions ---
//

// Querier defines a common interface for QueryRow,
// which is implemented by both *sql.DB and *sql.Tx.
// This allows our helpers to be used in or out of a transaction.
type Querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// GetWalletBalance calculates a user's current wallet balance.
// The balance is never stored; it is always the sum of the ledger.
func (h *Handlers) GetWalletBalance(q Querier, userID int64) (float64, error) {
	var balance sql.NullFloat64 // SUM() over zero rows yields NULL

	query := "SELECT SUM(amount) FROM wallet_transactions WHERE user_id = ?"

	err := q.QueryRow(query, userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0.0, nil
		}
		return 0.0, err
	}
	if !balance.Valid {
		return 0.0, nil
	}

	return balance.Float64, nil
}

// AddWalletTransaction appends a ledger entry and records the balance that
// resulted from it. This is the only function that should ever change a
// balance, and it MUST be called from within a transaction so the FOR UPDATE
// read and the insert are atomic.
func (h *Handlers) AddWalletTransaction(tx *sql.Tx, userID int64, txType string, amount float64, notes string) error {
	var currentBalance sql.NullFloat64
	err := tx.QueryRow("SELECT SUM(amount) FROM wallet_transactions WHERE user_id = ? FOR UPDATE", userID).Scan(&currentBalance)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to get balance for update: %w", err)
	}

	newBalance := currentBalance.Float64 + amount

	query := `
		INSERT INTO wallet_transactions
		(user_id, type, status, amount, balance_after, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.Exec(query, userID, txType, "completed", amount, newBalance, notes, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add wallet transaction: %w", err)
	}

	return nil
}

//
// --- Wallet HTTP Handlers ---
//

// GetMyWallet is the handler for GET /api/wallet
// It returns the user's current balance and recent transaction history.
func (h *Handlers) GetMyWallet(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Get Current Balance ---
	balance, err := h.GetWalletBalance(h.DB, userID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to get wallet balance", err))
		return
	}

	// 3. --- Get Transaction History ---
	rows, err := h.DB.Query(`
		SELECT id, user_id, type, status, amount, balance_after, notes, created_at
		FROM wallet_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 50`, userID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load transactions", err))
		return
	}
	defer rows.Close()

	transactions := make([]models.WalletTransaction, 0)
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Type,
			&t.Status,
			&t.Amount,
			&t.BalanceAfter,
			&t.Notes,
			&t.CreatedAt,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan transaction row", err))
			return
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating transaction rows", err))
		return
	}

	// 4. --- Send Response ---
	c.JSON(http.StatusOK, gin.H{
		"currentBalance": balance,
		"transactions":   transactions,
	})
}

// TopUpInput defines the JSON for a manual wallet top-up.
type TopUpInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0,lte=10000"`
}

// TopUpWallet is the handler for POST /api/wallet/topup
// There is no payment provider behind this; it exists so collectors can
// fund their wallet for pack purchases.
func (h *Handlers) TopUpWallet(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input TopUpInput
	if !bindJSON(c, &input) {
		return
	}

	var balance float64
	err := database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		if err := h.AddWalletTransaction(tx, userID, "topup", input.Amount, "Manual top-up"); err != nil {
			return apperrors.Internal("Failed to record transaction", err)
		}

		b, err := h.GetWalletBalance(tx, userID)
		if err != nil {
			return apperrors.Internal("Failed to get wallet balance", err)
		}
		balance = b
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Top-up successful",
		"amount":         input.Amount,
		"currentBalance": balance,
	})
}
