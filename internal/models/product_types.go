package models

import (
	"time"
)

// Product is the model for the 'products' table. A product is one sealed
// release (e.g. "2024 Topps Chrome Baseball"), sold by the pack or the box.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Slug        string `json:"slug" db:"slug"`
	Name        string `json:"name" db:"name"`
	Brand       string `json:"brand" db:"brand"`
	Sport       string `json:"sport" db:"sport"`
	ReleaseYear int    `json:"releaseYear" db:"release_year"`
	Description string `json:"description" db:"description"`

	// --- Pricing & Pack Math ---
	PackPrice    float64 `json:"packPrice" db:"pack_price"`
	CardsPerPack int     `json:"cardsPerPack" db:"cards_per_pack"`
	PacksPerBox  int     `json:"packsPerBox" db:"packs_per_box"`
	BoxPrice     float64 `json:"boxPrice" db:"box_price"`

	// --- Configuration ---
	Status string `json:"status" db:"status"` // 'draft', 'active' or 'archived'

	// --- Media ---
	PackImageURL *string `json:"packImageUrl,omitempty" db:"pack_image_url"`
	BoxImageURL  *string `json:"boxImageUrl,omitempty" db:"box_image_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (Not in DB table, populated manually)
	Sets []ProductSet `json:"sets,omitempty" db:"-"`
}

// ProductSet is the model for the 'product_sets' table. Every product has
// exactly one base set plus any number of insert sets; each insert set
// carries 1-in-N pull odds.
type ProductSet struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"productId" db:"product_id"`
	Name      string `json:"name" db:"name"`
	IsBase    bool   `json:"isBase" db:"is_base"`

	// OddsPerPack is the N in "1:N packs". Zero for the base set.
	OddsPerPack int `json:"oddsPerPack" db:"odds_per_pack"`
	Position    int `json:"position" db:"position"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (Not in DB table, populated manually)
	Cards     []Card `json:"cards,omitempty" db:"-"`
	CardCount int    `json:"cardCount,omitempty" db:"-"`
}

// Card is the model for the 'cards' table. card_number is unique within
// its set, not globally ("150" exists in base and in a parallel).
type Card struct {
	ID           int64   `json:"id" db:"id"`
	ProductSetID int64   `json:"productSetId" db:"product_set_id"`
	CardNumber   string  `json:"cardNumber" db:"card_number"`
	Player       string  `json:"player" db:"player"`
	Team         *string `json:"team,omitempty" db:"team"`
	Subset       *string `json:"subset,omitempty" db:"subset"`
	Variant      *string `json:"variant,omitempty" db:"variant"`

	FrontImageURL *string  `json:"frontImageUrl,omitempty" db:"front_image_url"`
	BackImageURL  *string  `json:"backImageUrl,omitempty" db:"back_image_url"`
	BookValue     *float64 `json:"bookValue,omitempty" db:"book_value"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
