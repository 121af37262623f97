package chatview

import (
	"context"
	"time"

	"marketchat/internal/domain/chat"
)

// DefaultPollInterval is the reconciliation cadence while a room is open.
const DefaultPollInterval = 2 * time.Second

// fetchFunc queries the durable store for messages created strictly after
// the given time.
type fetchFunc func(ctx context.Context, after time.Time) ([]chat.Message, error)

// Poller is the correctness backstop behind the best-effort channel: every
// interval it re-queries the store for anything newer than its watermark, so
// a dropped push is recovered within one tick. The watermark only advances
// from store results - never from channel pushes - because the channel does
// not order deliveries and an advanced watermark would hide an older dropped
// message from the poll query forever.
type Poller struct {
	interval  time.Duration
	fetch     fetchFunc
	deliver   func([]chat.Message)
	watermark time.Time
}

func NewPoller(interval time.Duration, seed time.Time, fetch fetchFunc, deliver func([]chat.Message)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		interval:  interval,
		fetch:     fetch,
		deliver:   deliver,
		watermark: seed,
	}
}

// Run polls until ctx is cancelled. A failed poll is dropped and retried on
// the next tick; it never surfaces and never regresses the watermark.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	msgs, err := p.fetch(ctx, p.watermark)
	if err != nil || len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		if m.CreatedAt.After(p.watermark) {
			p.watermark = m.CreatedAt
		}
	}
	p.deliver(msgs)
}
