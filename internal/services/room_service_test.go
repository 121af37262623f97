package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketchat/internal/domain/chat"
	marketchat_errors "marketchat/pkg/errors"
)

func TestRoomService_GetOrCreate_SameRoomForBothArgOrders(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	low, high := chat.CanonicalPair(alice, bob)
	noListing := uuid.NullUUID{}

	existing := chat.ChatRoom{
		ID:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
	}

	repo := new(MockRoomRepository)
	repo.On("FindByPair", mock.Anything, low, high, noListing).Return(existing, nil)

	svc := NewRoomService(repo)

	r1, err := svc.GetOrCreate(context.Background(), alice, bob, noListing)
	require.NoError(t, err)
	r2, err := svc.GetOrCreate(context.Background(), bob, alice, noListing)
	require.NoError(t, err)

	assert.Equal(t, r1.ID, r2.ID)
	repo.AssertExpectations(t)
}

func TestRoomService_GetOrCreate_CreatesOnFirstContact(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	low, high := chat.CanonicalPair(alice, bob)
	noListing := uuid.NullUUID{}

	repo := new(MockRoomRepository)
	repo.On("FindByPair", mock.Anything, low, high, noListing).
		Return(chat.ChatRoom{}, marketchat_errors.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *chat.ChatRoom) bool {
		return r.ParticipantLow == low && r.ParticipantHigh == high && !r.ListingID.Valid
	})).Return(nil).Once()

	svc := NewRoomService(repo)

	room, err := svc.GetOrCreate(context.Background(), alice, bob, noListing)
	require.NoError(t, err)
	assert.Equal(t, low, room.ParticipantLow)
	assert.Equal(t, high, room.ParticipantHigh)
	assert.NotEqual(t, uuid.Nil, room.ID)
	repo.AssertExpectations(t)
}

func TestRoomService_GetOrCreate_LostRaceResolvesToWinnersRoom(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	low, high := chat.CanonicalPair(alice, bob)
	noListing := uuid.NullUUID{}

	winners := chat.ChatRoom{
		ID:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
	}

	repo := new(MockRoomRepository)
	repo.On("FindByPair", mock.Anything, low, high, noListing).
		Return(chat.ChatRoom{}, marketchat_errors.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).
		Return(marketchat_errors.ErrConflict).Once()
	repo.On("FindByPair", mock.Anything, low, high, noListing).
		Return(winners, nil).Once()

	svc := NewRoomService(repo)

	room, err := svc.GetOrCreate(context.Background(), alice, bob, noListing)
	require.NoError(t, err)
	assert.Equal(t, winners.ID, room.ID)
	repo.AssertExpectations(t)
}

func TestRoomService_GetOrCreate_ListingScopesTheRoom(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	low, high := chat.CanonicalPair(alice, bob)
	listing := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	scoped := chat.ChatRoom{
		ID:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
		ListingID:       listing,
	}

	repo := new(MockRoomRepository)
	repo.On("FindByPair", mock.Anything, low, high, listing).Return(scoped, nil)

	svc := NewRoomService(repo)

	room, err := svc.GetOrCreate(context.Background(), alice, bob, listing)
	require.NoError(t, err)
	assert.Equal(t, scoped.ID, room.ID)
	repo.AssertExpectations(t)
}

func TestRoomService_GetOrCreate_RejectsSelfChat(t *testing.T) {
	alice := uuid.New()
	repo := new(MockRoomRepository)
	svc := NewRoomService(repo)

	_, err := svc.GetOrCreate(context.Background(), alice, alice, uuid.NullUUID{})
	assert.ErrorIs(t, err, marketchat_errors.ErrInvalidOperation)

	// Rejected before any store access.
	repo.AssertNotCalled(t, "FindByPair", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomService_GetOrCreate_RejectsNilIds(t *testing.T) {
	repo := new(MockRoomRepository)
	svc := NewRoomService(repo)

	_, err := svc.GetOrCreate(context.Background(), uuid.Nil, uuid.New(), uuid.NullUUID{})
	assert.ErrorIs(t, err, marketchat_errors.ErrInvalidInput)

	_, err = svc.GetOrCreate(context.Background(), uuid.New(), uuid.Nil, uuid.NullUUID{})
	assert.ErrorIs(t, err, marketchat_errors.ErrInvalidInput)
}

func TestRoomService_GetForUser_OutsiderGetsNotFound(t *testing.T) {
	room := chat.ChatRoom{
		ID:              uuid.New(),
		ParticipantLow:  uuid.New(),
		ParticipantHigh: uuid.New(),
	}
	outsider := uuid.New()

	repo := new(MockRoomRepository)
	repo.On("GetByID", mock.Anything, room.ID).Return(room, nil)

	svc := NewRoomService(repo)

	_, err := svc.GetForUser(context.Background(), outsider, room.ID)
	assert.ErrorIs(t, err, marketchat_errors.ErrNotFound)

	got, err := svc.GetForUser(context.Background(), room.ParticipantLow, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
}
