package models

import (
	"time"
)

// SealedInventory is the model for the 'sealed_inventory' table.
// One row per (user, product) holding the count of unopened packs.
type SealedInventory struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	ProductID  int64     `json:"productId" db:"product_id"`
	PacksOwned int       `json:"packsOwned" db:"packs_owned"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated by the inventory listing query)
	ProductName  string  `json:"productName,omitempty" db:"-"`
	ProductSlug  string  `json:"productSlug,omitempty" db:"-"`
	PackImageURL *string `json:"packImageUrl,omitempty" db:"-"`
	PackPrice    float64 `json:"packPrice,omitempty" db:"-"`
}

// CardOwnership is the model for the 'card_ownership' table.
// One row per (user, card); quantity counts duplicate pulls.
type CardOwnership struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CardID    int64     `json:"cardId" db:"card_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated by the collection queries)
	Card        *Card  `json:"card,omitempty" db:"-"`
	SetName     string `json:"setName,omitempty" db:"-"`
	ProductName string `json:"productName,omitempty" db:"-"`
}
