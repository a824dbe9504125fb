package rip

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(start, count int) []int64 {
	ids := make([]int64, count)
	for i := range ids {
		ids[i] = int64(start + i)
	}
	return ids
}

func cardIDs(pulls []Pull) []int64 {
	ids := make([]int64, len(pulls))
	for i, p := range pulls {
		ids[i] = p.CardID
	}
	return ids
}

func assertDistinct(t *testing.T, pulls []Pull) {
	t.Helper()
	seen := make(map[int64]bool, len(pulls))
	for _, p := range pulls {
		assert.False(t, seen[p.CardID], "card %d selected twice", p.CardID)
		seen[p.CardID] = true
	}
}

func TestComposePackBaseOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := seqIDs(1, 20)

	pulls, err := ComposePack(rng, 5, base, nil)
	require.NoError(t, err)

	assert.Len(t, pulls, 5)
	assertDistinct(t, pulls)
	for _, p := range pulls {
		assert.False(t, p.IsInsert)
		assert.Contains(t, base, p.CardID)
	}
}

func TestComposePackDeterministicForSeed(t *testing.T) {
	base := seqIDs(1, 50)
	pools := []InsertPool{{SetID: 9, OddsPerPack: 4, CardIDs: seqIDs(100, 10)}}

	first, err := ComposePack(rand.New(rand.NewSource(42)), 8, base, pools)
	require.NoError(t, err)
	second, err := ComposePack(rand.New(rand.NewSource(42)), 8, base, pools)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposePackUsesWholePoolWhenExact(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	base := seqIDs(1, 6)

	pulls, err := ComposePack(rng, 6, base, nil)
	require.NoError(t, err)

	assert.Len(t, pulls, 6)
	assert.ElementsMatch(t, base, cardIDs(pulls))
}

func TestComposePackNotEnoughBaseCards(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	_, err := ComposePack(rng, 5, seqIDs(1, 3), nil)
	assert.ErrorIs(t, err, ErrNotEnoughBaseCards)
}

func TestComposePackGuaranteedInsert(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	base := seqIDs(1, 20)
	insertIDs := seqIDs(100, 3)
	// OddsPerPack 1 means Intn(1) == 0 on every trial: the pool always hits.
	pools := []InsertPool{{SetID: 2, OddsPerPack: 1, CardIDs: insertIDs}}

	pulls, err := ComposePack(rng, 5, base, pools)
	require.NoError(t, err)
	require.Len(t, pulls, 5)
	assertDistinct(t, pulls)

	inserts := 0
	for _, p := range pulls {
		if p.IsInsert {
			inserts++
			assert.Contains(t, insertIDs, p.CardID)
		} else {
			assert.Contains(t, base, p.CardID)
		}
	}
	assert.Equal(t, 1, inserts)
}

func TestComposePackEmptyInsertPoolBackfills(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	base := seqIDs(1, 20)
	pools := []InsertPool{{SetID: 2, OddsPerPack: 1, CardIDs: nil}}

	pulls, err := ComposePack(rng, 5, base, pools)
	require.NoError(t, err)

	// The hit pool had nothing to give; the slot is dropped and backfilled
	// from base, so the pack is still full and insert-free.
	assert.Len(t, pulls, 5)
	assertDistinct(t, pulls)
	for _, p := range pulls {
		assert.False(t, p.IsInsert)
	}
}

func TestComposePackExcludedInsertBackfills(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	base := seqIDs(1, 5)
	// Both pools hit every time, but they share their only card. The second
	// pool finds it excluded and contributes nothing.
	pools := []InsertPool{
		{SetID: 2, OddsPerPack: 1, CardIDs: []int64{100}},
		{SetID: 3, OddsPerPack: 1, CardIDs: []int64{100}},
	}

	pulls, err := ComposePack(rng, 3, base, pools)
	require.NoError(t, err)

	assert.Len(t, pulls, 3)
	assertDistinct(t, pulls)

	inserts := 0
	for _, p := range pulls {
		if p.IsInsert {
			inserts++
			assert.Equal(t, int64(100), p.CardID)
		}
	}
	assert.Equal(t, 1, inserts)
}

func TestComposePackMoreHitsThanSlots(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	base := seqIDs(1, 10)
	pools := []InsertPool{
		{SetID: 2, OddsPerPack: 1, CardIDs: []int64{100}},
		{SetID: 3, OddsPerPack: 1, CardIDs: []int64{200}},
		{SetID: 4, OddsPerPack: 1, CardIDs: []int64{300}},
	}

	pulls, err := ComposePack(rng, 2, base, pools)
	require.NoError(t, err)

	// Every hit pool contributes even when hits exceed the pack size; the
	// pack runs over rather than suppressing a hit.
	assert.Len(t, pulls, 3)
	for _, p := range pulls {
		assert.True(t, p.IsInsert)
	}
}

func TestComposePackZeroOddsNeverHit(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	base := seqIDs(1, 20)
	pools := []InsertPool{{SetID: 2, OddsPerPack: 0, CardIDs: seqIDs(100, 5)}}

	for i := 0; i < 200; i++ {
		pulls, err := ComposePack(rng, 4, base, pools)
		require.NoError(t, err)
		for _, p := range pulls {
			assert.False(t, p.IsInsert)
		}
	}
}

func TestComposePackOddsConvergence(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	base := seqIDs(1, 30)
	pools := []InsertPool{{SetID: 2, OddsPerPack: 10, CardIDs: seqIDs(100, 5)}}

	const trials = 10000
	hits := 0
	for i := 0; i < trials; i++ {
		pulls, err := ComposePack(rng, 5, base, pools)
		require.NoError(t, err)
		for _, p := range pulls {
			if p.IsInsert {
				hits++
			}
		}
	}

	// Binomial with p = 0.1: expected 1000, sigma is 30. A band of five
	// sigmas keeps the test stable for any seed.
	assert.InDelta(t, trials/10, hits, 150)
}
