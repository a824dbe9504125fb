package feed

import (
	"encoding/json"
	"log"
	"time"

	"github.com/cardrip/cardrip-api/internal/models"
	"github.com/nats-io/nats.go"
)

// SubjectRips is the broker subject rip events are published on.
const SubjectRips = "rips.pulls"

// Publisher pushes rip events to a NATS broker so other processes (feed
// archivers, Discord bots) can follow pulls without polling the API.
// A nil Publisher is valid and publishes nothing.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials the broker. Called only when NATS_URL is configured; the
// API runs fine without a broker.
func Connect(url string) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("cardrip-api"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(60),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	return &Publisher{nc: nc}, nil
}

// PublishRip sends one rip event. Errors are logged, never returned: the
// broker is a side channel and must not fail a committed rip.
func (p *Publisher) PublishRip(event *models.RipEvent) {
	if p == nil || p.nc == nil || event == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("feed: failed to marshal rip event for broker: %v", err)
		return
	}

	if err := p.nc.Publish(SubjectRips, data); err != nil {
		log.Printf("feed: broker publish failed: %v", err)
	}
}

// Close drains the connection. Nil-safe for the broker-less setup.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}
