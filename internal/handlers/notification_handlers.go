package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// AddNotification is an internal helper, not a route handler. Other handlers
// call it from inside their transaction so the notification commits together
// with whatever caused it (an insert pull, an admin grant).
func (h *Handlers) AddNotification(tx *sql.Tx, userID int64, ntype string, message string, link string) error {
	var nullLink sql.NullString
	if link != "" {
		nullLink = sql.NullString{String: link, Valid: true}
	}

	query := `
		INSERT INTO notifications
		(user_id, type, message, link, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`

	_, err := tx.Exec(query, userID, ntype, message, nullLink, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}

	return nil
}

// GetMyNotifications is the handler for GET /api/notifications
// It retrieves notifications for the logged-in user, unread and newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Query Database ---
	query := `
		SELECT id, user_id, type, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC
		LIMIT 50`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load notifications", err))
		return
	}
	defer rows.Close()

	// 3. --- Scan Rows into Slice ---
	notifications := make([]*models.Notification, 0)
	unread := 0
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.UserID,
			&notif.Type,
			&notif.Message,
			&notif.Link,
			&notif.IsRead,
			&notif.CreatedAt,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan notification row", err))
			return
		}
		if !notif.IsRead {
			unread++
		}
		notifications = append(notifications, &notif)
	}

	if err = rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating notification rows", err))
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// MarkNotificationAsRead is the handler for PATCH /api/notifications/:id/read
// It marks a single notification as read.
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	// 1. --- Get IDs ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	notificationID := c.Param("id")

	// 2. --- Execute Update ---
	// The user_id predicate keeps users from touching each other's rows.
	query := `
		UPDATE notifications
		SET is_read = 1
		WHERE id = ? AND user_id = ?`

	result, err := h.DB.Exec(query, notificationID, userID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update notification", err))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, apperrors.Internal("Failed to check affected rows", err))
		return
	}
	if rowsAffected == 0 {
		respondError(c, apperrors.NotFound("Notification not found"))
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead is the handler for PATCH /api/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	_, err := h.DB.Exec("UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update notifications", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
	})
}
