package handlers

import (
	"database/sql"
	"math/rand"
	"time"

	"github.com/cardrip/cardrip-api/internal/ai"
	"github.com/cardrip/cardrip-api/internal/config"
	"github.com/cardrip/cardrip-api/internal/feed"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB         *sql.DB         // Primary Read/Write connection
	DBReadOnly *sql.DB         // Read-Only connection for the AI service
	AIService  *ai.AIService   // nil when GEMINI_API_KEY is not set
	Cfg        *config.Config  // runtime settings
	Hub        *feed.Hub       // live feed fan-out
	Publisher  *feed.Publisher // optional NATS side channel, nil without a broker

	// Rand overrides the pack RNG in tests. Leave nil in production:
	// *rand.Rand is not safe for concurrent use, so every request builds
	// its own.
	Rand *rand.Rand
}

func (h *Handlers) rng() *rand.Rand {
	if h.Rand != nil {
		return h.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
