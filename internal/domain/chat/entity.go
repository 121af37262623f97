package chat

import (
	"bytes"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ChatRoom represents the chat_rooms table. Exactly one room exists per
// unordered participant pair and listing context; the pair is stored
// canonically with ParticipantLow < ParticipantHigh by byte order.
type ChatRoom struct {
	ID              uuid.UUID
	ParticipantLow  uuid.UUID
	ParticipantHigh uuid.UUID
	ListingID       uuid.NullUUID
	LastActivityAt  time.Time
	CreatedAt       time.Time
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// Message represents the messages table
type Message struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	ReadAt    sql.NullTime
	CreatedAt time.Time
}

func (Message) TableName() string { return "messages" }

// CanonicalPair orders two user ids by byte comparison so {a, b} and {b, a}
// map to the same stored pair.
func CanonicalPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

func (r ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.ParticipantLow == userID || r.ParticipantHigh == userID
}

// Peer returns the other participant of the room.
func (r ChatRoom) Peer(userID uuid.UUID) uuid.UUID {
	if r.ParticipantLow == userID {
		return r.ParticipantHigh
	}
	return r.ParticipantLow
}

// Less orders messages ascending by creation time, with the id as a
// deterministic tiebreak.
func Less(a, b Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
