package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/cardrip/cardrip-api/internal/config"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/middleware"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	flag "github.com/spf13/pflag"
)

// Seeder for local development and demos. It is idempotent: rerunning it
// skips anything that already exists.
//
//	go run ./cmd/seed --admin --admin-password secret123 --demo --grant-packs 10
func main() {
	createAdmin := flag.Bool("admin", false, "create or promote the admin account")
	adminEmail := flag.String("admin-email", "admin@cardrip.dev", "email for the admin account")
	adminPassword := flag.String("admin-password", "", "password for a newly created admin account")
	demo := flag.Bool("demo", false, "seed the demo product with sets and cards")
	grantPacks := flag.Int("grant-packs", 0, "grant this many demo packs to the local collector")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DBDSN == "" {
		log.Fatal("CRITICAL ERROR: DB_DSN environment variable is not set.")
	}

	db, err := database.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	if err := database.EnsureDefaults(db); err != nil {
		log.Fatalf("Failed to seed default settings: %v", err)
	}

	ctx := context.Background()

	if *createAdmin {
		if err := seedAdmin(ctx, db, *adminEmail, *adminPassword); err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
	}

	if *demo || *grantPacks > 0 {
		productID, err := seedDemoProduct(ctx, db)
		if err != nil {
			log.Fatalf("Failed to seed demo product: %v", err)
		}

		if *grantPacks > 0 {
			if err := grantDemoPacks(ctx, db, productID, *grantPacks); err != nil {
				log.Fatalf("Failed to grant packs: %v", err)
			}
		}
	}

	log.Println("Seeding complete")
}

// seedAdmin creates the admin account, or promotes it if the email already
// belongs to a user.
func seedAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	return database.WithTx(ctx, db, func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&userID)
		if err == nil {
			_, err := tx.Exec("UPDATE users SET role = 'admin', updated_at = ? WHERE id = ?", time.Now(), userID)
			if err != nil {
				return err
			}
			log.Printf("Promoted existing user %s to admin", email)
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}

		if password == "" {
			return fmt.Errorf("--admin-password is required when creating a new admin")
		}

		var pw models.Password
		if err := pw.Set(password); err != nil {
			return err
		}

		_, err = tx.Exec(
			"INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, 'Admin', 'admin')",
			email, pw.Hash)
		if err != nil {
			return err
		}
		log.Printf("Created admin account %s", email)
		return nil
	})
}

// seedDemoProduct creates an activated demo product with a base set and two
// insert sets. Returns the product ID, existing or new.
func seedDemoProduct(ctx context.Context, db *sql.DB) (int64, error) {
	const (
		name  = "Pinnacle Prism Baseball"
		brand = "Pinnacle"
		year  = 2024
	)
	productSlug := slug.Make(fmt.Sprintf("%d %s %s", year, brand, name))

	var productID int64
	err := db.QueryRow("SELECT id FROM products WHERE slug = ?", productSlug).Scan(&productID)
	if err == nil {
		log.Printf("Demo product already seeded (id %d)", productID)
		return productID, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO products
			(slug, name, brand, sport, release_year, description, pack_price,
			 cards_per_pack, packs_per_box, box_price, status)
			VALUES (?, ?, ?, 'baseball', ?,
			        'The flagship chromium release with rookie prisms and on-card signatures.',
			        4.99, 8, 24, 99.99, 'active')`,
			productSlug, name, brand, year)
		if err != nil {
			return err
		}
		productID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		baseSetID, err := insertSet(tx, productID, "Base", true, 0, 0)
		if err != nil {
			return err
		}
		rookieSetID, err := insertSet(tx, productID, "Prism Rookies", false, 4, 1)
		if err != nil {
			return err
		}
		sigSetID, err := insertSet(tx, productID, "Signatures", false, 24, 2)
		if err != nil {
			return err
		}

		firstNames := []string{
			"Dax", "Trey", "Marcus", "Yuki", "Rafael", "Cole",
			"Andre", "Mateo", "Jalen", "Soren", "Nico", "Wyatt",
		}
		lastNames := []string{
			"Morrow", "Callahan", "Delgado", "Tanaka", "Vega",
			"Whitfield", "Okafor", "Reyes", "Hargrove", "Lindqvist",
			"Ferraro", "Slate", "Boone", "Navarro", "Ashford",
		}
		teams := []string{
			"Harbor City Mariners", "Redstone Rattlers", "Lakeshore Pilots",
			"Ironwood Bears", "Sunset Valley Kings", "Bluff Creek Badgers",
			"Capitol Comets", "Dockside Admirals",
		}

		// 60 distinct names: lcm(12, 15) covers the whole run.
		for i := 0; i < 60; i++ {
			player := firstNames[i%len(firstNames)] + " " + lastNames[i%len(lastNames)]
			team := teams[i%len(teams)]
			value := 0.25
			if i%10 == 9 {
				value = 1.50
			}
			if err := insertDemoCard(tx, baseSetID, fmt.Sprintf("%d", i+1), player, team, "", value); err != nil {
				return err
			}
		}

		for i := 0; i < 12; i++ {
			player := firstNames[(i*5)%len(firstNames)] + " " + lastNames[(i*7)%len(lastNames)]
			team := teams[(i*3)%len(teams)]
			if err := insertDemoCard(tx, rookieSetID, fmt.Sprintf("PR-%d", i+1), player, team, "Prism Refractor", 6.00); err != nil {
				return err
			}
		}

		for i := 0; i < 6; i++ {
			player := firstNames[(i*2)%len(firstNames)] + " " + lastNames[(i*4)%len(lastNames)]
			team := teams[(i*5)%len(teams)]
			if err := insertDemoCard(tx, sigSetID, fmt.Sprintf("SIG-%d", i+1), player, team, "On-Card Auto", 40.00); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Seeded demo product %q (id %d): 60 base, 12 rookies, 6 signatures", name, productID)
	return productID, nil
}

func insertSet(tx *sql.Tx, productID int64, name string, isBase bool, odds, position int) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO product_sets (product_id, name, is_base, odds_per_pack, position) VALUES (?, ?, ?, ?, ?)",
		productID, name, isBase, odds, position)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertDemoCard(tx *sql.Tx, setID int64, number, player, team, variant string, bookValue float64) error {
	var variantArg interface{}
	if variant != "" {
		variantArg = variant
	}
	_, err := tx.Exec(
		"INSERT INTO cards (product_set_id, card_number, player, team, variant, book_value) VALUES (?, ?, ?, ?, ?, ?)",
		setID, number, player, team, variantArg, bookValue)
	return err
}

// grantDemoPacks credits sealed packs to the local default collector,
// creating the account if the API has never run.
func grantDemoPacks(ctx context.Context, db *sql.DB, productID int64, quantity int) error {
	return database.WithTx(ctx, db, func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRow("SELECT id FROM users WHERE email = ?", middleware.DefaultCollectorEmail).Scan(&userID)
		if err == sql.ErrNoRows {
			var pw models.Password
			if err := pw.Set(uuid.NewString()); err != nil {
				return err
			}
			res, err := tx.Exec(
				"INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, 'Local Collector', 'collector')",
				middleware.DefaultCollectorEmail, pw.Hash)
			if err != nil {
				return err
			}
			if userID, err = res.LastInsertId(); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO sealed_inventory (user_id, product_id, packs_owned)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE packs_owned = packs_owned + ?`,
			userID, productID, quantity, quantity)
		if err != nil {
			return err
		}

		log.Printf("Granted %d pack(s) of product %d to %s", quantity, productID, middleware.DefaultCollectorEmail)
		return nil
	})
}
