package handlers

import (
	"testing"

	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bv(v float64) *float64 { return &v }

func TestHighlightCardsPrefersInserts(t *testing.T) {
	pulled := []models.PulledCard{
		{ID: 1, BookValue: bv(10)}, // pricey base card, still not a highlight
		{ID: 2, IsInsert: true, BookValue: bv(2)},
		{ID: 3},
		{ID: 4, IsInsert: true},
	}

	got := highlightCards(pulled)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
}

func TestHighlightCardsFallsBackToTopValue(t *testing.T) {
	pulled := []models.PulledCard{
		{ID: 1, BookValue: bv(0.25)},
		{ID: 2, BookValue: bv(1.50)},
		{ID: 3},
	}

	got := highlightCards(pulled)

	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestHighlightCardsNoValuesPicksFirst(t *testing.T) {
	got := highlightCards([]models.PulledCard{{ID: 5}, {ID: 6}})

	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
}

func TestHighlightCardsEmptyPack(t *testing.T) {
	assert.Empty(t, highlightCards(nil))
}
