// Package feed fans rip events out to live viewers. Two channels exist:
// a WebSocket hub for browser clients and an optional NATS publisher for
// anything else listening on the broker. Both receive the same payload
// that GET /api/rip/recent serves, so a client can switch between pull
// and push without re-mapping fields.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/gorilla/websocket"
)

// Client is one connected live-feed viewer. Viewers are anonymous; the
// feed is broadcast-only and carries no per-user data.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub manages all active live-feed connections.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Start runs the hub's main loop in a goroutine.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.Register:
				h.mutex.Lock()
				h.clients[client] = true
				h.mutex.Unlock()

			case client := <-h.Unregister:
				h.mutex.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					close(client.Send)
				}
				h.mutex.Unlock()

			case message := <-h.broadcast:
				h.mutex.Lock()
				for client := range h.clients {
					select {
					case client.Send <- message:
					default:
						// Viewer cannot keep up; drop it rather than
						// stalling the whole feed.
						close(client.Send)
						delete(h.clients, client)
					}
				}
				h.mutex.Unlock()

			case <-ctx.Done():
				return
			}
		}
	}()
}

// BroadcastRip pushes one rip event to every connected viewer.
// Nil-safe so callers never have to guard the live feed being disabled.
func (h *Hub) BroadcastRip(event *models.RipEvent) {
	if h == nil || event == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("feed: failed to marshal rip event: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Println("feed: broadcast queue full, dropping event")
	}
}

// ReadPump drains the connection until the viewer disconnects. The feed
// accepts no client messages; reading is only how gorilla surfaces the
// close frame.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("feed: read error: %v", err)
			}
			break
		}
	}
}

// WritePump sends queued events to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
