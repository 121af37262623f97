package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"marketchat/internal/domain/chat"
	"marketchat/internal/events"
)

// MockRoomRepository is a mock implementation of repository.RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Create(ctx context.Context, r *chat.ChatRoom) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.ChatRoom, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(chat.ChatRoom), args.Error(1)
}

func (m *MockRoomRepository) FindByPair(ctx context.Context, low, high uuid.UUID, listingID uuid.NullUUID) (chat.ChatRoom, error) {
	args := m.Called(ctx, low, high, listingID)
	return args.Get(0).(chat.ChatRoom), args.Error(1)
}

func (m *MockRoomRepository) GetUserRooms(ctx context.Context, userID uuid.UUID) ([]chat.ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.ChatRoom), args.Error(1)
}

func (m *MockRoomRepository) TouchActivity(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, roomID, at)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of repository.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *chat.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(chat.Message), args.Error(1)
}

func (m *MockMessageRepository) ListRoomMessages(ctx context.Context, roomID uuid.UUID, after time.Time) ([]chat.Message, error) {
	args := m.Called(ctx, roomID, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, messageIDs []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, messageIDs, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockBroadcaster is a mock implementation of events.Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Publish(ctx context.Context, roomID uuid.UUID, env events.Envelope) error {
	args := m.Called(ctx, roomID, env)
	return args.Error(0)
}

func (m *MockBroadcaster) Subscribe(ctx context.Context, roomID uuid.UUID, h events.Handler) (func(), error) {
	args := m.Called(ctx, roomID, h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
