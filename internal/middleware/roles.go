package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Role-Based Middleware ---
//
// Runs AFTER Session(). Reads the userID from the context, queries the
// user's role, and enforces it.
//

// RequireAdmin gates the /api/admin routes.
func RequireAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from Session
		userIDRaw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (Session must run first)", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}
		userID := userIDRaw.(int64)

		// 2. Query DB for the user's role
		var role string
		err := db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user", "code": "UNAUTHORIZED"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role", "code": "INTERNAL_ERROR"})
			}
			c.Abort()
			return
		}

		// 3. Check permission
		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: admin role required", "code": "FORBIDDEN"})
			c.Abort()
			return
		}

		// 4. Success. Keep the role around for handlers that care.
		c.Set("userRole", role)
		c.Next()
	}
}
