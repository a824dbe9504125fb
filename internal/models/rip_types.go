package models

import (
	"encoding/json"
	"time"
)

// PulledCard is one card coming out of an opened pack. It is the wire
// shape for the rip response, the live feed and the stored event summary,
// so the three can never disagree.
type PulledCard struct {
	ID            int64    `json:"id"`
	CardNumber    string   `json:"cardNumber"`
	Player        string   `json:"player"`
	Team          *string  `json:"team"`
	Subset        *string  `json:"subset"`
	Variant       *string  `json:"variant"`
	FrontImageURL *string  `json:"frontImageUrl"`
	BackImageURL  *string  `json:"backImageUrl"`
	BookValue     *float64 `json:"bookValue"`
	IsInsert      bool     `json:"isInsert"`

	// OwnedAfter is the user's copy count for this card once the rip
	// is committed, duplicates from the same pack included.
	OwnedAfter int `json:"ownedAfter"`
}

// RipResult is the response body for a successful pack opening.
type RipResult struct {
	Ok           bool         `json:"ok"`
	ProductID    int64        `json:"productId"`
	PackImageURL *string      `json:"packImageUrl"`
	CardsPerPack int          `json:"cardsPerPack"`
	Cards        []PulledCard `json:"cards"`
}

// RipEvent is the model for the 'rip_events' table, the persisted feed of
// recent openings. Summary holds the JSON highlight cards so the feed can
// render without re-joining the card tables.
type RipEvent struct {
	ID          int64           `json:"id" db:"id"`
	UserID      int64           `json:"userId" db:"user_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	InsertCount int             `json:"insertCount" db:"insert_count"`
	TotalValue  float64         `json:"totalValue" db:"total_value"`
	Summary     json.RawMessage `json:"summary" db:"summary"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`

	// Joins (populated by the feed query)
	DisplayName string `json:"displayName,omitempty" db:"-"`
	ProductName string `json:"productName,omitempty" db:"-"`
	ProductSlug string `json:"productSlug,omitempty" db:"-"`
}
