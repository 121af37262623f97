package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"marketchat/internal/domain/chat"
)

type EventType string

const (
	EventMessageCreated EventType = "message.created"
	EventMessageRead    EventType = "message.read"
)

// Redis channel prefix for per-room fan-out
const ChannelPrefixRoom = "chat:room:"

func RoomChannel(roomID uuid.UUID) string {
	return ChannelPrefixRoom + roomID.String()
}

type Envelope struct {
	EventType  EventType       `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// MessageEvent is the wire form of a message. It round-trips id, room id,
// sender id, content and created_at losslessly.
type MessageEvent struct {
	ID        uuid.UUID  `json:"id"`
	RoomID    uuid.UUID  `json:"room_id"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Content   string     `json:"content"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ReadEvent notifies room subscribers that messages transitioned to read.
type ReadEvent struct {
	RoomID     uuid.UUID   `json:"room_id"`
	ReaderID   uuid.UUID   `json:"reader_id"`
	MessageIDs []uuid.UUID `json:"message_ids"`
	ReadAt     time.Time   `json:"read_at"`
}

func FromMessage(m chat.Message) MessageEvent {
	e := MessageEvent{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.ReadAt.Valid {
		t := m.ReadAt.Time
		e.ReadAt = &t
	}
	return e
}

func (e MessageEvent) ToMessage() chat.Message {
	m := chat.Message{
		ID:        e.ID,
		RoomID:    e.RoomID,
		SenderID:  e.SenderID,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
	if e.ReadAt != nil {
		m.ReadAt.Time = *e.ReadAt
		m.ReadAt.Valid = true
	}
	return m
}

func NewMessageEnvelope(m chat.Message) (Envelope, error) {
	payload, err := json.Marshal(FromMessage(m))
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:  EventMessageCreated,
		OccurredAt: time.Now(),
		Payload:    payload,
	}, nil
}

func NewReadEnvelope(ev ReadEvent) (Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:  EventMessageRead,
		OccurredAt: time.Now(),
		Payload:    payload,
	}, nil
}

// Handler receives every envelope published on a subscribed room channel.
type Handler func(Envelope)

// Broadcaster is the per-room best-effort delivery channel. Delivery is not
// guaranteed and not ordered; the durable store plus the reconciliation
// poller are the correctness backstop. A sender subscribed to its own room
// receives its own events back.
type Broadcaster interface {
	Publish(ctx context.Context, roomID uuid.UUID, env Envelope) error
	// Subscribe establishes a live feed for one room and returns a function
	// that tears the subscription down.
	Subscribe(ctx context.Context, roomID uuid.UUID, h Handler) (func(), error)
}
