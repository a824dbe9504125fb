package main

import (
	"context"
	"log"
	"time"

	"github.com/cardrip/cardrip-api/internal/ai"
	"github.com/cardrip/cardrip-api/internal/config"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/feed"
	"github.com/cardrip/cardrip-api/internal/handlers"
	"github.com/cardrip/cardrip-api/internal/routes"
)

func main() {
	// 0. --- Load Configuration ---
	// Reads the environment, with .env support for local development.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DBDSN == "" {
		log.Fatal("CRITICAL ERROR: DB_DSN environment variable is not set.")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("CRITICAL ERROR: JWT_SECRET environment variable is not set.")
	}

	// 1. --- Main Database Connection (Read/Write) ---
	db, err := database.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	if err := database.EnsureDefaults(db); err != nil {
		log.Fatalf("Failed to seed default settings: %v", err)
	}

	// 2. --- Read-Only Connection ---
	// Serves the AI service and the public feed queries. Without a replica
	// DSN it falls back to the primary pool.
	dbReadOnly := db
	if cfg.DBDSNReadOnly != "" {
		dbReadOnly, err = database.OpenDB(cfg.DBDSNReadOnly)
		if err != nil {
			log.Fatalf("Failed to connect to read-only database: %v", err)
		}
		defer dbReadOnly.Close()
	}

	// 3. --- AI Service (Optional) ---
	var aiService *ai.AIService
	if cfg.GeminiAPIKey != "" {
		aiService, err = ai.NewAIService(cfg.GeminiAPIKey, dbReadOnly)
		if err != nil {
			log.Fatalf("Failed to initialize AI service: %v", err)
		}
		defer aiService.Client.Close()
		log.Println("AI description service enabled")
	} else {
		log.Println("GEMINI_API_KEY not set; AI description endpoint disabled")
	}

	// 4. --- Live Feed Hub & Broker ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := feed.NewHub()
	hub.Start(ctx)

	var publisher *feed.Publisher
	if cfg.NATSURL != "" {
		publisher, err = feed.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS at %s: %v", cfg.NATSURL, err)
		}
		defer publisher.Close()
		log.Println("NATS pull broadcasting enabled")
	}

	// --- Application Setup ---
	// Every dependency is injected into the Handlers struct.
	app := &handlers.Handlers{
		DB:         db,
		DBReadOnly: dbReadOnly,
		AIService:  aiService,
		Cfg:        cfg,
		Hub:        hub,
		Publisher:  publisher,
	}

	// 5. --- Background Worker ---
	// Keeps the public feed bounded by pruning old rip events every hour.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		retention := time.Duration(cfg.FeedRetentionDays) * 24 * time.Hour
		log.Printf("Background worker started: pruning rip events older than %d days", cfg.FeedRetentionDays)

		for range ticker.C {
			app.PruneRipEvents(retention)
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	log.Printf("Starting CardRip API server on port %s...", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
