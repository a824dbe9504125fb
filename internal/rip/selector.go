// Package rip implements pack composition: the weighted random selection
// that turns one sealed pack into a list of card pulls. The selection here
// is pure logic over in-memory pools; consuming inventory and recording
// the pulls is the handler's transaction.
package rip

import (
	"errors"
	"math/rand"
)

// ErrNotEnoughBaseCards is returned when the base pool cannot fill the base
// slots of the pack. The caller surfaces it as a product configuration
// problem, not a user error.
var ErrNotEnoughBaseCards = errors.New("not enough base cards to fill the pack")

// InsertPool is one non-base set with configured pull odds.
// OddsPerPack is the N in "1:N packs"; pools with N <= 0 never hit.
type InsertPool struct {
	SetID       int64
	OddsPerPack int
	CardIDs     []int64
}

// Pull is one selected card slot.
type Pull struct {
	CardID   int64
	IsInsert bool
}

// ComposePack selects the contents of a single pack.
//
// Determinism: the result depends only on rng, the pool contents and their
// order, so a seeded *rand.Rand reproduces the exact pack.
//
// Selection rules:
//  1. Every insert pool rolls independently: hit iff rng.Intn(N) == 0.
//  2. Hits reduce the number of base slots, never below zero.
//  3. Base slots are filled without replacement (partial Fisher-Yates).
//  4. Each hit pool contributes one card, excluding anything already in
//     the pack. A pool that is empty or fully excluded contributes
//     nothing; the slot is dropped without an error.
//  5. Dropped slots are backfilled with further unused base cards until
//     the pack is full or the base pool runs out. A short pack is
//     therefore possible and intentional.
func ComposePack(rng *rand.Rand, cardsPerPack int, baseCardIDs []int64, insertPools []InsertPool) ([]Pull, error) {
	// 1. Roll every insert pool independently.
	var hits []int
	for i, pool := range insertPools {
		if pool.OddsPerPack <= 0 {
			continue
		}
		if rng.Intn(pool.OddsPerPack) == 0 {
			hits = append(hits, i)
		}
	}

	baseSlotsNeeded := cardsPerPack - len(hits)
	if baseSlotsNeeded < 0 {
		baseSlotsNeeded = 0
	}
	if len(baseCardIDs) < baseSlotsNeeded {
		return nil, ErrNotEnoughBaseCards
	}

	// 2. Partial Fisher-Yates over a copy of the base pool. Positions past
	// baseSlotsNeeded stay available for the backfill step.
	base := make([]int64, len(baseCardIDs))
	copy(base, baseCardIDs)
	for i := 0; i < baseSlotsNeeded; i++ {
		j := i + rng.Intn(len(base)-i)
		base[i], base[j] = base[j], base[i]
	}

	pulls := make([]Pull, 0, cardsPerPack)
	chosen := make(map[int64]bool, cardsPerPack)
	for _, id := range base[:baseSlotsNeeded] {
		pulls = append(pulls, Pull{CardID: id})
		chosen[id] = true
	}

	// 3. One card per hit pool, skipping cards already in the pack.
	for _, idx := range hits {
		pool := insertPools[idx]
		candidates := make([]int64, 0, len(pool.CardIDs))
		for _, id := range pool.CardIDs {
			if !chosen[id] {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			continue // slot dropped; step 4 may compensate
		}

		id := candidates[rng.Intn(len(candidates))]
		pulls = append(pulls, Pull{CardID: id, IsInsert: true})
		chosen[id] = true
	}

	// 4. Backfill dropped slots by continuing the shuffle over the unused
	// base cards.
	for i := baseSlotsNeeded; len(pulls) < cardsPerPack && i < len(base); i++ {
		j := i + rng.Intn(len(base)-i)
		base[i], base[j] = base[j], base[i]
		pulls = append(pulls, Pull{CardID: base[i]})
		chosen[base[i]] = true
	}

	return pulls, nil
}
