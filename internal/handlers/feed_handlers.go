package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/cardrip/cardrip-api/internal/feed"
	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//
// --- Public Rip Feed ---
//

// GetRecentRips is the handler for GET /api/rip/recent. It returns the
// newest feed events first, shaped exactly like the live socket payload so
// clients can render both from one code path.
func (h *Handlers) GetRecentRips(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, apperrors.Validation("limit must be a positive number", err))
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	rows, err := h.DBReadOnly.Query(`
		SELECT re.id, re.user_id, re.product_id, re.insert_count, re.total_value,
		       re.summary, re.created_at, u.display_name, p.name, p.slug
		FROM rip_events re
		JOIN users u ON re.user_id = u.id
		JOIN products p ON re.product_id = p.id
		ORDER BY re.created_at DESC, re.id DESC
		LIMIT ?`, limit)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to load recent rips", err))
		return
	}
	defer rows.Close()

	events := make([]models.RipEvent, 0, limit)
	for rows.Next() {
		var e models.RipEvent
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.ProductID, &e.InsertCount, &e.TotalValue,
			&e.Summary, &e.CreatedAt, &e.DisplayName, &e.ProductName, &e.ProductSlug,
		); err != nil {
			respondError(c, apperrors.Internal("Failed to scan rip event", err))
			return
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		respondError(c, apperrors.Internal("Error iterating rip events", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"rips": events})
}

// LiveFeed is the handler for GET /api/rip/live. It upgrades the request to
// a websocket and subscribes it to the broadcast hub. The server only
// pushes; anything the client writes besides control frames is discarded.
func (h *Handlers) LiveFeed(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.Cfg.CORSOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := &feed.Client{Conn: conn, Send: make(chan []byte, 8)}
	h.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump(h.Hub)
}

// PruneRipEvents deletes feed events older than the retention window. Only
// the public feed is bounded this way; card ownership is kept forever.
func (h *Handlers) PruneRipEvents(retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	res, err := h.DB.Exec("DELETE FROM rip_events WHERE created_at < ?", cutoff)
	if err != nil {
		log.Printf("Error pruning rip events: %v", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("Pruned %d rip events older than %s", n, cutoff.Format("2006-01-02"))
	}
}
