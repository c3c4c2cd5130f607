// Package bus bridges change events across server instances via Redis
// Pub/Sub so that sessions connected to any instance converge.
package bus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	"github.com/timayobrian6-droid/Internship-tracker/internal/metrics"
)

const eventsChannel = "pipeline:events"

// envelope is the wire format on the Redis channel. Origin identifies the
// publishing instance so it can skip its own messages on the way back.
type envelope struct {
	Event    domain.ChangeEvent `json:"event"`
	Audience domain.Audience    `json:"audience"`
	Origin   string             `json:"origin"`
}

// Bridge implements domain.EventEmitter by delivering events to the local hub
// and publishing them to Redis for every other instance.
type Bridge struct {
	hub    domain.EventEmitter
	rdb    *goredis.Client
	origin string
}

func NewBridge(hub domain.EventEmitter, rdb *goredis.Client) *Bridge {
	return &Bridge{
		hub:    hub,
		rdb:    rdb,
		origin: uuid.NewString(),
	}
}

// Emit delivers locally and publishes to the bus. Publish failures are logged
// and swallowed: broadcast delivery is best-effort by design.
func (b *Bridge) Emit(event domain.ChangeEvent, audience domain.Audience) {
	b.hub.Emit(event, audience)
	metrics.EventsEmittedTotal.WithLabelValues(string(event.Name)).Inc()

	data, err := json.Marshal(envelope{Event: event, Audience: audience, Origin: b.origin})
	if err != nil {
		slog.Error("Failed to marshal event envelope", "error", err)
		return
	}
	if err := b.rdb.Publish(context.Background(), eventsChannel, data).Err(); err != nil {
		metrics.BusPublishFailures.Inc()
		slog.Warn("Failed to publish event to bus", "event", string(event.Name), "error", err)
	}
}

// Run subscribes to the bus and replays remote events into the local hub
// until ctx is cancelled. Self-originated messages are skipped.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, eventsChannel)
	defer func() { _ = sub.Close() }()

	msgCh := sub.Channel()
	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("Failed to unmarshal bus message", "error", err)
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.Emit(env.Event, env.Audience)
		case <-ctx.Done():
			return
		}
	}
}
