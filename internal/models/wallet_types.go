package models

import (
	"database/sql"
	"time"
)

// WalletTransaction is the model for the 'wallet_transactions' table.
// The table is an append-only ledger; a balance is always SUM(amount),
// never a stored column.
type WalletTransaction struct {
	ID           int64          `json:"id" db:"id"`
	UserID       int64          `json:"userId" db:"user_id"`
	Type         string         `json:"type" db:"type"`     // e.g. topup, pack_purchase, box_purchase, signup_bonus
	Status       string         `json:"status" db:"status"` // always 'completed' for now
	Amount       float64        `json:"amount" db:"amount"` // positive credit, negative debit
	BalanceAfter float64        `json:"balanceAfter" db:"balance_after"`
	Notes        sql.NullString `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}
