package chatview

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketchat/internal/domain/chat"
	"marketchat/internal/events"
	marketchat_errors "marketchat/pkg/errors"
	"marketchat/pkg/logger"
)

// MessageStore is the durable store surface the session depends on.
// ChatService implements it; tests substitute an in-memory fake.
type MessageStore interface {
	SendMessage(ctx context.Context, senderID, roomID uuid.UUID, content string) (chat.Message, error)
	ListMessages(ctx context.Context, userID, roomID uuid.UUID, after time.Time) ([]chat.Message, error)
	MarkRead(ctx context.Context, readerID, roomID uuid.UUID, messageIDs []uuid.UUID) error
}

// Session drives one participant's open room: it seeds the view from a full
// history read, subscribes to the room channel, runs the reconciliation
// poller, and funnels every source - history, pushes, polls, local sends -
// through the same ingest path. Peer messages ingested while the session is
// open are marked read (read means "room open", see DESIGN.md).
type Session struct {
	store       MessageStore
	broadcaster events.Broadcaster
	log         *logger.Logger

	userID uuid.UUID
	room   chat.ChatRoom
	view   *View

	cancel   context.CancelFunc
	closeSub func()

	mu     sync.Mutex
	closed bool
}

type SessionConfig struct {
	Store        MessageStore
	Broadcaster  events.Broadcaster
	Logger       *logger.Logger
	PollInterval time.Duration
}

// Open loads the room history, starts the channel subscription and the
// poller, and returns a live session. A failed history read is surfaced:
// the room cannot be displayed without it. A failed channel subscription is
// not - the poller alone still guarantees delivery.
func Open(ctx context.Context, cfg SessionConfig, userID uuid.UUID, room chat.ChatRoom) (*Session, error) {
	s := &Session{
		store:       cfg.Store,
		broadcaster: cfg.Broadcaster,
		log:         cfg.Logger,
		userID:      userID,
		room:        room,
		view:        NewView(),
	}

	history, err := cfg.Store.ListMessages(ctx, userID, room.ID, time.Time{})
	if err != nil {
		return nil, err
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.ingest(sessCtx, history)

	seed := time.Time{}
	for _, m := range history {
		if m.CreatedAt.After(seed) {
			seed = m.CreatedAt
		}
	}

	if cfg.Broadcaster != nil {
		closeSub, err := cfg.Broadcaster.Subscribe(sessCtx, room.ID, func(env events.Envelope) {
			s.onEvent(sessCtx, env)
		})
		if err != nil {
			s.logTransient("subscribe to room %s: %v", room.ID, err)
		} else {
			s.closeSub = closeSub
		}
	}

	poller := NewPoller(cfg.PollInterval, seed, func(ctx context.Context, after time.Time) ([]chat.Message, error) {
		return s.store.ListMessages(ctx, s.userID, s.room.ID, after)
	}, func(msgs []chat.Message) {
		s.ingest(sessCtx, msgs)
	})
	go poller.Run(sessCtx)

	return s, nil
}

// SendMessage validates locally, writes to the durable store (the only
// awaited step), then ingests the stored message. The channel publish is the
// server's job and already best-effort; a publish the server loses comes
// back through the poller.
func (s *Session) SendMessage(ctx context.Context, content string) (chat.Message, error) {
	if strings.TrimSpace(content) == "" {
		return chat.Message{}, marketchat_errors.ErrInvalidInput
	}

	msg, err := s.store.SendMessage(ctx, s.userID, s.room.ID, content)
	if err != nil {
		return chat.Message{}, err
	}
	s.ingest(ctx, []chat.Message{msg})
	return msg, nil
}

// Messages returns the current merged view.
func (s *Session) Messages() []chat.Message {
	return s.view.Messages()
}

// Close tears down the channel subscription and the poller. Late deliveries
// from either source become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.closeSub != nil {
		s.closeSub()
	}
	s.cancel()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ingest is the single funnel for all three delivery sources. Fresh peer
// messages are marked read while the session holds the room open; the
// session never marks its own messages.
func (s *Session) ingest(ctx context.Context, msgs []chat.Message) {
	if s.isClosed() {
		return
	}

	fresh := s.view.Ingest(msgs)

	var unread []uuid.UUID
	for _, m := range fresh {
		if m.SenderID != s.userID && !m.ReadAt.Valid {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) == 0 {
		return
	}

	if err := s.store.MarkRead(ctx, s.userID, s.room.ID, unread); err != nil {
		// The store still holds them unread; the next room open marks them.
		s.logTransient("mark read in room %s: %v", s.room.ID, err)
	}
}

func (s *Session) onEvent(ctx context.Context, env events.Envelope) {
	if s.isClosed() {
		return
	}

	switch env.EventType {
	case events.EventMessageCreated:
		var ev events.MessageEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			s.logTransient("decode message event: %v", err)
			return
		}
		if ev.RoomID != s.room.ID {
			return
		}
		s.ingest(ctx, []chat.Message{ev.ToMessage()})
	case events.EventMessageRead:
		var ev events.ReadEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			s.logTransient("decode read event: %v", err)
			return
		}
		if ev.RoomID != s.room.ID {
			return
		}
		s.view.ApplyRead(ev.MessageIDs, ev.ReadAt)
	}
}

func (s *Session) logTransient(template string, args ...interface{}) {
	if s.log != nil {
		s.log.Debugf(template, args...)
	}
}
