package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// OpenDB creates and configures a DB connection pool using the provided
// DSN string. It is used for BOTH the primary and the read-only pool.
func OpenDB(dsn string) (*sql.DB, error) {
	// 1. Open a new connection pool.
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// 2. Configure the connection pool settings.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 3. Ping the database to verify the connection.
	err = db.Ping()
	if err != nil {
		log.Printf("Error connecting to database: %v", err)
		return nil, err
	}

	log.Println("Database connection pool established successfully")
	return db, nil
}

// WithTx runs fn inside a SERIALIZABLE transaction and commits only when
// fn returns nil. The deferred rollback is the safety net for every early
// return and panic inside fn.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// schemaStatements is executed in order by EnsureSchema. One statement per
// entry because the driver runs a single statement per Exec call.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		role VARCHAR(20) NOT NULL DEFAULT 'collector',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		display_name VARCHAR(100) NOT NULL,
		avatar_url VARCHAR(512) NULL,
		favorite_team VARCHAR(100) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		version INT NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		slug VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		brand VARCHAR(100) NOT NULL DEFAULT '',
		sport VARCHAR(50) NOT NULL DEFAULT '',
		release_year INT NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		pack_price DECIMAL(10,2) NOT NULL DEFAULT 0,
		cards_per_pack INT NOT NULL,
		packs_per_box INT NOT NULL DEFAULT 0,
		box_price DECIMAL(10,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		pack_image_url VARCHAR(512) NULL,
		box_image_url VARCHAR(512) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS product_sets (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		is_base BOOLEAN NOT NULL DEFAULT FALSE,
		odds_per_pack INT NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_product_sets_product FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS cards (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_set_id BIGINT NOT NULL,
		card_number VARCHAR(50) NOT NULL,
		player VARCHAR(255) NOT NULL,
		team VARCHAR(100) NULL,
		subset VARCHAR(100) NULL,
		variant VARCHAR(100) NULL,
		front_image_url VARCHAR(512) NULL,
		back_image_url VARCHAR(512) NULL,
		book_value DECIMAL(10,2) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_cards_set_number (product_set_id, card_number),
		CONSTRAINT fk_cards_set FOREIGN KEY (product_set_id) REFERENCES product_sets (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS sealed_inventory (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		packs_owned INT NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_sealed_user_product (user_id, product_id),
		CONSTRAINT fk_sealed_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_sealed_product FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS card_ownership (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		card_id BIGINT NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_ownership_user_card (user_id, card_id),
		CONSTRAINT fk_ownership_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_ownership_card FOREIGN KEY (card_id) REFERENCES cards (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type VARCHAR(50) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		amount DECIMAL(10,2) NOT NULL,
		balance_after DECIMAL(10,2) NOT NULL,
		notes VARCHAR(512) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_wallet_user (user_id),
		CONSTRAINT fk_wallet_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS rip_events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		insert_count INT NOT NULL DEFAULT 0,
		total_value DECIMAL(10,2) NOT NULL DEFAULT 0,
		summary JSON NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_rip_events_created (created_at),
		CONSTRAINT fk_rip_events_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_rip_events_product FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type VARCHAR(30) NOT NULL DEFAULT 'system',
		message VARCHAR(512) NOT NULL,
		link VARCHAR(512) NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_notifications_user (user_id),
		CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		setting_key VARCHAR(100) PRIMARY KEY,
		setting_value VARCHAR(255) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT ''
	)`,
}

// EnsureSchema creates any missing tables. Safe to run on every boot.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDefaults seeds the settings rows the middleware and handlers read.
// INSERT IGNORE keeps values an admin already changed.
func EnsureDefaults(db *sql.DB) error {
	defaults := []struct {
		key, value, description string
	}{
		{"maintenance_mode", "false", "When 'true', only admins can use the API"},
		{"signup_bonus", "100.00", "Wallet credit granted to every new account"},
	}

	for _, d := range defaults {
		_, err := db.Exec(
			"INSERT IGNORE INTO settings (setting_key, setting_value, description) VALUES (?, ?, ?)",
			d.key, d.value, d.description,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
