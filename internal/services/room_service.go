package services

import (
	"context"
	"errors"
	"time"

	"marketchat/internal/domain/chat"
	"marketchat/internal/repository"
	marketchat_errors "marketchat/pkg/errors"

	"github.com/google/uuid"
)

// RoomService resolves the unordered pair {requester, other} (+ optional
// listing) to exactly one room, creating it on first contact.
type RoomService struct {
	roomRepo repository.RoomRepository
}

func NewRoomService(roomRepo repository.RoomRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo}
}

// GetOrCreate returns the canonical room for the pair and listing context.
// Self-chat is rejected before any store access. Lookup is idempotent; a
// lost creation race is resolved by retrying as a lookup, so two concurrent
// first contacts can never produce two rooms.
func (s *RoomService) GetOrCreate(ctx context.Context, requesterID, otherID uuid.UUID, listingID uuid.NullUUID) (chat.ChatRoom, error) {
	if requesterID == uuid.Nil || otherID == uuid.Nil {
		return chat.ChatRoom{}, marketchat_errors.ErrInvalidInput
	}
	if requesterID == otherID {
		return chat.ChatRoom{}, marketchat_errors.ErrInvalidOperation
	}

	low, high := chat.CanonicalPair(requesterID, otherID)

	room, err := s.roomRepo.FindByPair(ctx, low, high, listingID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, marketchat_errors.ErrNotFound) {
		return chat.ChatRoom{}, err
	}

	now := time.Now()
	created := chat.ChatRoom{
		ID:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
		ListingID:       listingID,
		LastActivityAt:  now,
		CreatedAt:       now,
	}
	err = s.roomRepo.Create(ctx, &created)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, marketchat_errors.ErrConflict) {
		// Lost the race; the other writer's row is the canonical one.
		return s.roomRepo.FindByPair(ctx, low, high, listingID)
	}
	return chat.ChatRoom{}, err
}

// GetForUser fetches a room and verifies the caller belongs to it. Outsiders
// get ErrNotFound rather than ErrForbidden so room ids do not leak.
func (s *RoomService) GetForUser(ctx context.Context, userID, roomID uuid.UUID) (chat.ChatRoom, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return chat.ChatRoom{}, err
	}
	if !room.HasParticipant(userID) {
		return chat.ChatRoom{}, marketchat_errors.ErrNotFound
	}
	return room, nil
}

// ListForUser returns the caller's rooms, most recently active first.
func (s *RoomService) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.ChatRoom, error) {
	return s.roomRepo.GetUserRooms(ctx, userID)
}
