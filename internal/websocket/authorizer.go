package websocket

import (
	"context"
	"errors"
	"strings"

	"marketchat/internal/events"
	"marketchat/internal/repository"
	marketchat_errors "marketchat/pkg/errors"

	"github.com/google/uuid"
)

// ChannelAuthorizer decides whether a user may subscribe to a room channel.
// Only the two room participants may listen in.
type ChannelAuthorizer struct {
	roomRepo repository.RoomRepository
}

// NewChannelAuthorizer creates a new channel authorizer
func NewChannelAuthorizer(roomRepo repository.RoomRepository) *ChannelAuthorizer {
	return &ChannelAuthorizer{roomRepo: roomRepo}
}

// CanSubscribe checks if a user is authorized to subscribe to a channel
func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID uuid.UUID, channel string) (bool, error) {
	if !strings.HasPrefix(channel, events.ChannelPrefixRoom) {
		return false, nil
	}

	roomID, err := uuid.Parse(strings.TrimPrefix(channel, events.ChannelPrefixRoom))
	if err != nil {
		return false, nil
	}

	room, err := a.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, marketchat_errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return room.HasParticipant(userID), nil
}
