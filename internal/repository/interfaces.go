package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketchat/internal/domain/chat"
)

type RoomRepository interface {
	// Create inserts a new room. A duplicate (participant pair, listing)
	// insert returns ErrConflict; the store's uniqueness constraint is the
	// sole arbiter of the creation race.
	Create(ctx context.Context, r *chat.ChatRoom) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.ChatRoom, error)
	// FindByPair looks up the room for a canonical pair and an exact listing
	// value. A null listing matches only rooms with no listing.
	FindByPair(ctx context.Context, low, high uuid.UUID, listingID uuid.NullUUID) (chat.ChatRoom, error)
	GetUserRooms(ctx context.Context, userID uuid.UUID) ([]chat.ChatRoom, error)
	TouchActivity(ctx context.Context, roomID uuid.UUID, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error)
	// ListRoomMessages returns every message of the room with creation time
	// strictly greater than after, ascending by (created_at, id). A zero
	// after returns the full history.
	ListRoomMessages(ctx context.Context, roomID uuid.UUID, after time.Time) ([]chat.Message, error)
	// MarkRead sets read_at for the given messages, skipping any already
	// read. Returns the ids actually transitioned.
	MarkRead(ctx context.Context, messageIDs []uuid.UUID, at time.Time) ([]uuid.UUID, error)
}
