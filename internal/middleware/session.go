package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/cardrip/cardrip-api/internal/auth"
	"github.com/cardrip/cardrip-api/internal/config"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultCollectorEmail identifies the account used when no Authorization
// header is sent. A fresh single-user install works with zero setup: the
// account is created on first request.
const DefaultCollectorEmail = "local@cardrip.dev"

// Session resolves the acting user for every request and stores the ID in
// the gin context as "userID".
//
// With an Authorization header the Bearer token must validate. Without
// one, the request runs as the default local collector. Every downstream
// handler reads the user from context and never assumes who is acting.
func Session(db *sql.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Check Maintenance Mode ---
		// Missing setting row just means "not in maintenance".
		var maintenanceMode string
		_ = db.QueryRow("SELECT setting_value FROM settings WHERE setting_key = 'maintenance_mode'").Scan(&maintenanceMode)

		// 2. --- Resolve the Acting User ---
		var userID int64

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)", "code": "UNAUTHORIZED"})
				c.Abort()
				return
			}

			id, err := auth.ValidateToken(cfg.JWTSecret, parts[1])
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "UNAUTHORIZED"})
				c.Abort()
				return
			}
			userID = id
		} else {
			id, err := defaultCollectorID(c, db)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve local user", "code": "INTERNAL_ERROR"})
				c.Abort()
				return
			}
			userID = id
		}

		// 3. --- Enforce Maintenance Mode ---
		// When maintenance is ON, only admins can pass.
		if maintenanceMode == "true" {
			var role string
			err := db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable (maintenance check failed)", "code": "INTERNAL_ERROR"})
				c.Abort()
				return
			}

			if role != "admin" {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The system is currently in maintenance mode. Please try again later.", "code": "MAINTENANCE"})
				c.Abort()
				return
			}
		}

		// 4. --- Success ---
		c.Set("userID", userID)
		c.Next()
	}
}

// defaultCollectorID fetches the local collector account, creating it on
// first use. Creation also grants the signup bonus so a brand-new install
// can buy a pack immediately.
func defaultCollectorID(c *gin.Context, db *sql.DB) (int64, error) {
	var userID int64
	err := db.QueryRow("SELECT id FROM users WHERE email = ?", DefaultCollectorEmail).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	err = database.WithTx(c, db, func(tx *sql.Tx) error {
		// The account never logs in by password; hash a throwaway one.
		var password models.Password
		if err := password.Set(uuid.NewString()); err != nil {
			return err
		}

		// INSERT IGNORE so two first-requests racing do not fail;
		// the loser falls through to the re-select below.
		result, err := tx.Exec(
			"INSERT IGNORE INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, 'collector')",
			DefaultCollectorEmail, password.Hash, "Local Collector",
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		if id == 0 {
			// Another request created the row first.
			return tx.QueryRow("SELECT id FROM users WHERE email = ?", DefaultCollectorEmail).Scan(&userID)
		}
		userID = id

		var bonus float64
		err = tx.QueryRow("SELECT setting_value FROM settings WHERE setting_key = 'signup_bonus'").Scan(&bonus)
		if err != nil || bonus <= 0 {
			return nil // no bonus configured
		}

		_, err = tx.Exec(
			`INSERT INTO wallet_transactions (user_id, type, status, amount, balance_after, notes)
			 VALUES (?, 'signup_bonus', 'completed', ?, ?, 'Welcome credit')`,
			userID, bonus, bonus,
		)
		return err
	})
	if err != nil {
		return 0, err
	}

	return userID, nil
}
