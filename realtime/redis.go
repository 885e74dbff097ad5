package realtime

import (
	"context"
	"encoding/json"

	"knead/models"
	"knead/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventsChannel is the Redis pub/sub channel carrying booking change events
// between processes.
const EventsChannel = "knead:booking-events"

// RedisBridge relays change events over Redis pub/sub. The process that owns
// the store change stream broadcasts; follower processes feed their local
// bus from the channel instead of opening their own stream.
type RedisBridge struct {
	client *redis.Client
}

// NewRedisBridge creates a bridge on the given client.
func NewRedisBridge(client *redis.Client) *RedisBridge {
	return &RedisBridge{client: client}
}

// Broadcast publishes one event to the Redis channel. Failures are logged
// and dropped; followers recover through their poll fallback.
func (br *RedisBridge) Broadcast(ctx context.Context, ev models.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		utils.GetLogger().Warn("failed to marshal change event", zap.Error(err))
		return
	}
	if err := br.client.Publish(ctx, EventsChannel, data).Err(); err != nil {
		utils.GetLogger().Warn("failed to broadcast change event", zap.Error(err))
	}
}

// Run subscribes to the Redis channel and republishes incoming events into
// the local bus. Returns when ctx is cancelled.
func (br *RedisBridge) Run(ctx context.Context, bus *Bus) {
	logger := utils.GetLogger()
	pubsub := br.client.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("failed to decode bridged change event", zap.Error(err))
				continue
			}
			bus.Publish(ev)
		case <-ctx.Done():
			return
		}
	}
}
