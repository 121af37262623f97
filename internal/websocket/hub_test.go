package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestClient() *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   uuid.New(),
		Send:     make(chan []byte, 8),
		channels: make(map[string]bool),
	}
}

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastReachesSubscribersOnly(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	subscribed := newTestClient()
	other := newTestClient()
	hub.Register(subscribed)
	hub.Register(other)

	hub.Subscribe(subscribed, "chat:room:a")
	waitFor(t, func() bool { return hub.GetChannelSubscriberCount("chat:room:a") == 1 })

	hub.Broadcast("chat:room:a", []byte("hello"))

	select {
	case msg := <-subscribed.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive broadcast")
	}

	select {
	case <-other.Send:
		t.Fatal("non-subscriber received broadcast")
	default:
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	client := newTestClient()
	hub.Register(client)
	hub.Subscribe(client, "chat:room:a")
	waitFor(t, func() bool { return hub.GetChannelSubscriberCount("chat:room:a") == 1 })

	hub.Unsubscribe(client, "chat:room:a")
	waitFor(t, func() bool { return hub.GetChannelSubscriberCount("chat:room:a") == 0 })

	hub.Broadcast("chat:room:a", []byte("gone"))
	select {
	case <-client.Send:
		t.Fatal("unsubscribed client received broadcast")
	default:
	}
}

func TestHub_UnregisterCleansUpSubscriptions(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	client := newTestClient()
	hub.Register(client)
	hub.Subscribe(client, "chat:room:a")
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })
	waitFor(t, func() bool { return hub.GetChannelSubscriberCount("chat:room:a") == 1 })

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })
	assert.Equal(t, 0, hub.GetChannelSubscriberCount("chat:room:a"))

	// Send channel is closed as part of cleanup.
	_, open := <-client.Send
	assert.False(t, open)
}
