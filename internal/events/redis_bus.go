package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"marketchat/pkg/logger"
)

// RedisBroadcaster implements Broadcaster over Redis Pub/Sub. One Redis
// channel per room; at-most-once per publish attempt, no replay.
type RedisBroadcaster struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisBroadcaster(client *redis.Client, log *logger.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, log: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, roomID uuid.UUID, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, RoomChannel(roomID), data).Err()
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, roomID uuid.UUID, h Handler) (func(), error) {
	sub := b.client.Subscribe(ctx, RoomChannel(roomID))

	// Force the SUBSCRIBE round trip so a broken connection fails here
	// rather than silently dropping everything.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	go func() {
		for msg := range sub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				if b.log != nil {
					b.log.Warnf("dropping malformed event on %s: %v", msg.Channel, err)
				}
				continue
			}
			h(env)
		}
	}()

	return func() { _ = sub.Close() }, nil
}
