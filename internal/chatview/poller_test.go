package chatview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"marketchat/internal/domain/chat"
)

func TestPoller_TickAdvancesWatermarkFromResults(t *testing.T) {
	base := time.Now()
	batch := []chat.Message{
		{ID: uuid.New(), CreatedAt: base.Add(time.Second)},
		{ID: uuid.New(), CreatedAt: base.Add(3 * time.Second)},
		{ID: uuid.New(), CreatedAt: base.Add(2 * time.Second)},
	}

	var askedAfter []time.Time
	var delivered []chat.Message
	p := NewPoller(time.Hour, base,
		func(_ context.Context, after time.Time) ([]chat.Message, error) {
			askedAfter = append(askedAfter, after)
			if len(askedAfter) == 1 {
				return batch, nil
			}
			return nil, nil
		},
		func(msgs []chat.Message) { delivered = append(delivered, msgs...) },
	)

	p.tick(context.Background())
	p.tick(context.Background())

	assert.Len(t, delivered, 3)
	assert.Equal(t, base, askedAfter[0])
	assert.Equal(t, base.Add(3*time.Second), askedAfter[1])
}

func TestPoller_FailedTickKeepsWatermark(t *testing.T) {
	base := time.Now()

	var askedAfter []time.Time
	calls := 0
	p := NewPoller(time.Hour, base,
		func(_ context.Context, after time.Time) ([]chat.Message, error) {
			askedAfter = append(askedAfter, after)
			calls++
			if calls == 1 {
				return nil, errors.New("store down")
			}
			return nil, nil
		},
		func([]chat.Message) {},
	)

	p.tick(context.Background())
	p.tick(context.Background())

	// The failed tick must not move the watermark.
	assert.Equal(t, askedAfter[0], askedAfter[1])
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(time.Millisecond, time.Time{},
		func(context.Context, time.Time) ([]chat.Message, error) { return nil, nil },
		func([]chat.Message) {},
	)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}
