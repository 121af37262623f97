package websocket

import (
	"context"

	"marketchat/internal/events"

	"github.com/redis/go-redis/v9"
)

// RedisBridge fans every room channel published on Redis out to the local
// hub. One pattern subscription covers all rooms, so a message published by
// any API instance reaches the WebSocket clients connected to this one.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
}

func NewRedisBridge(client *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{client: client, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, events.ChannelPrefixRoom+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.hub.Broadcast(msg.Channel, []byte(msg.Payload))
		}
	}
}
