package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastRipNilSafe(t *testing.T) {
	// Neither a nil hub nor a nil event may panic; the live feed is an
	// optional side channel.
	var h *Hub
	h.BroadcastRip(&models.RipEvent{ID: 1})

	NewHub().BroadcastRip(nil)
}

func TestPublisherNilSafe(t *testing.T) {
	var p *Publisher
	p.PublishRip(&models.RipEvent{ID: 1})
	p.Close()
}

func TestHubDeliversToRegisteredClient(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx)

	client := &Client{Send: make(chan []byte, 4)}
	h.Register <- client

	event := &models.RipEvent{
		ID:          7,
		UserID:      3,
		ProductID:   9,
		InsertCount: 1,
		TotalValue:  12.5,
		CreatedAt:   time.Now(),
		DisplayName: "Sam",
		ProductName: "Demo Product",
		ProductSlug: "demo-product",
	}
	h.BroadcastRip(event)

	select {
	case payload := <-client.Send:
		var got models.RipEvent
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, event.InsertCount, got.InsertCount)
		assert.Equal(t, event.DisplayName, got.DisplayName)
		assert.Equal(t, event.ProductSlug, got.ProductSlug)
	case <-time.After(2 * time.Second):
		t.Fatal("no payload delivered to registered client")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx)

	// Unbuffered and never read: no broadcast can be delivered to it.
	slow := &Client{Send: make(chan []byte)}
	healthy := &Client{Send: make(chan []byte, 4)}
	h.Register <- slow
	h.Register <- healthy

	h.BroadcastRip(&models.RipEvent{ID: 1})
	h.BroadcastRip(&models.RipEvent{ID: 2})

	// Two deliveries to the healthy client mean the first broadcast has
	// been handled completely, including dropping the slow client.
	for i := 0; i < 2; i++ {
		select {
		case <-healthy.Send:
		case <-time.After(2 * time.Second):
			t.Fatalf("broadcast %d was not delivered", i+1)
		}
	}

	_, ok := <-slow.Send
	assert.False(t, ok, "send channel should be closed for a dropped client")
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx)

	client := &Client{Send: make(chan []byte, 1)}
	h.Register <- client
	h.Unregister <- client

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("unregister did not close the send channel")
	}
}
