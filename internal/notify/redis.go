// Package notify publishes pipeline events to downstream consumers. The
// invoicing workflow subscribes to the invoice_events channel and begins
// billing when a load's paperwork pair completes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"loaddocs/internal/config"
)

const sourceName = "loaddocs"

// invoiceReadyEvent is the wire shape published on the events channel.
type invoiceReadyEvent struct {
	EventType string `json:"event_type"`
	LoadID    string `json:"load_id"`
	DriverID  string `json:"driver_id"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// RedisNotifier publishes events to a Redis pub/sub channel. Publishing is
// fire-and-forget: failures are logged and swallowed so a broker outage never
// stalls document processing.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisNotifier connects to Redis using the configured URL.
func NewRedisNotifier(cfg *config.EventsConfig) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisNotifier{client: client, channel: cfg.Channel, now: time.Now}, nil
}

// InvoiceReady implements port.EventNotifier.
func (n *RedisNotifier) InvoiceReady(ctx context.Context, loadID, driverID uuid.UUID) {
	event := invoiceReadyEvent{
		EventType: "invoice_ready",
		LoadID:    loadID.String(),
		DriverID:  driverID.String(),
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Source:    sourceName,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify.RedisNotifier: encoding invoice_ready for load %s: %v", loadID, err)
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		log.Printf("notify.RedisNotifier: publishing invoice_ready for load %s: %v", loadID, err)
		return
	}
	log.Printf("notify.RedisNotifier: published invoice_ready for load %s on %s", loadID, n.channel)
}

// Close releases the underlying Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
