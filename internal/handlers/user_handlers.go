package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/auth"
	"github.com/cardrip/cardrip-api/internal/database"
	"github.com/cardrip/cardrip-api/internal/middleware"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- User & Auth Handlers ---
//

// RegisterInput defines the JSON for creating an account.
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
}

// Register is the handler for POST /api/auth/register
// New collectors get the configured signup bonus credited to their wallet in
// the same transaction that creates the account.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		respondError(c, apperrors.Internal("Failed to hash password", err))
		return
	}

	var user models.User
	err := database.WithTx(c, h.DB, func(tx *sql.Tx) error {
		// 3. --- Check for Existing Email ---
		var existingID int64
		err := tx.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&existingID)
		if err == nil {
			return apperrors.Conflict("Email address is already registered")
		}
		if err != sql.ErrNoRows {
			return apperrors.Internal("Failed to check email", err)
		}

		// 4. --- Create the User ---
		now := time.Now()
		res, err := tx.Exec(`
			INSERT INTO users (email, password_hash, display_name, role, status, created_at, updated_at)
			VALUES (?, ?, ?, 'collector', 'active', ?, ?)`,
			input.Email, password.Hash, input.DisplayName, now, now)
		if err != nil {
			return apperrors.Internal("Failed to create user", err)
		}
		userID, err := res.LastInsertId()
		if err != nil {
			return apperrors.Internal("Failed to get new user ID", err)
		}

		// 5. --- Credit the Signup Bonus ---
		var bonusRaw string
		err = tx.QueryRow("SELECT setting_value FROM settings WHERE setting_key = 'signup_bonus'").Scan(&bonusRaw)
		if err != nil && err != sql.ErrNoRows {
			return apperrors.Internal("Failed to read signup bonus", err)
		}
		var bonus float64
		if err == nil {
			if parsed, perr := strconv.ParseFloat(bonusRaw, 64); perr == nil {
				bonus = parsed
			}
		}
		if bonus > 0 {
			if err := h.AddWalletTransaction(tx, userID, "signup_bonus", bonus, "Welcome credit"); err != nil {
				return apperrors.Internal("Failed to credit signup bonus", err)
			}
		}

		if err := h.AddNotification(tx, userID, "system", "Welcome to CardRip! Grab a pack from the shop to get started.", "/shop"); err != nil {
			return apperrors.Internal("Failed to add welcome notification", err)
		}

		user = models.User{
			ID:          userID,
			Role:        "collector",
			Status:      "active",
			Email:       input.Email,
			DisplayName: input.DisplayName,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// 6. --- Issue a Token ---
	token, err := auth.GenerateToken(h.Cfg.JWTSecret, user.ID, time.Duration(h.Cfg.JWTExpiry)*time.Second)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to generate token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// LoginInput defines the JSON for logging in.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	// 2. --- Look Up the User ---
	var user models.User
	err := h.DB.QueryRow(`
		SELECT id, role, status, email, password_hash, display_name, created_at, updated_at
		FROM users
		WHERE email = ?`, input.Email).Scan(
		&user.ID,
		&user.Role,
		&user.Status,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			// Same message as a bad password so emails can't be probed.
			respondError(c, apperrors.Unauthorized("Invalid credentials", nil))
			return
		}
		respondError(c, apperrors.Internal("Failed to look up user", err))
		return
	}

	// 3. --- Verify the Password ---
	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to verify password", err))
		return
	}
	if !matches {
		respondError(c, apperrors.Unauthorized("Invalid credentials", nil))
		return
	}

	// 4. --- Check Account Status ---
	if user.Status != "active" {
		respondError(c, apperrors.Forbidden("Your account has been suspended"))
		return
	}

	// 5. --- Issue a Token ---
	token, err := auth.GenerateToken(h.Cfg.JWTSecret, user.ID, time.Duration(h.Cfg.JWTExpiry)*time.Second)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetMe is the handler for GET /api/me
// It returns the resolved identity for the request, which may be the shared
// default collector when no token was sent.
func (h *Handlers) GetMe(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var user models.User
	err := h.DB.QueryRow(`
		SELECT id, role, status, email, display_name, created_at, updated_at,
		       avatar_url, favorite_team
		FROM users
		WHERE id = ?`, userID).Scan(
		&user.ID,
		&user.Role,
		&user.Status,
		&user.Email,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.AvatarURL,
		&user.FavoriteTeam,
	)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load user", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":               user,
		"isDefaultCollector": user.Email == middleware.DefaultCollectorEmail,
	})
}
