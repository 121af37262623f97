package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketchat/internal/domain/chat"
	"marketchat/internal/events"
	marketchat_errors "marketchat/pkg/errors"
)

func testRoom() (chat.ChatRoom, uuid.UUID, uuid.UUID) {
	low, high := chat.CanonicalPair(uuid.New(), uuid.New())
	return chat.ChatRoom{
		ID:              uuid.New(),
		ParticipantLow:  low,
		ParticipantHigh: high,
	}, low, high
}

func TestChatService_SendMessage_RejectsBlankContent(t *testing.T) {
	roomRepo := new(MockRoomRepository)
	msgRepo := new(MockMessageRepository)
	bus := new(MockBroadcaster)
	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := svc.SendMessage(context.Background(), uuid.New(), uuid.New(), content)
		assert.ErrorIs(t, err, marketchat_errors.ErrInvalidInput)
	}

	roomRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_SendMessage_RejectsNonParticipant(t *testing.T) {
	room, _, _ := testRoom()
	outsider := uuid.New()

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)
	msgRepo := new(MockMessageRepository)
	bus := new(MockBroadcaster)
	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	_, err := svc.SendMessage(context.Background(), outsider, room.ID, "hello")
	assert.ErrorIs(t, err, marketchat_errors.ErrNotFound)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChatService_SendMessage_PersistsThenPublishes(t *testing.T) {
	room, alice, _ := testRoom()

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)
	roomRepo.On("TouchActivity", mock.Anything, room.ID, mock.Anything).Return(nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *chat.Message) bool {
		return m.RoomID == room.ID && m.SenderID == alice && m.Content == "hello"
	})).Return(nil)

	bus := new(MockBroadcaster)
	bus.On("Publish", mock.Anything, room.ID, mock.MatchedBy(func(env events.Envelope) bool {
		return env.EventType == events.EventMessageCreated
	})).Return(nil)

	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	msg, err := svc.SendMessage(context.Background(), alice, room.ID, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.NotEqual(t, uuid.Nil, msg.ID)

	roomRepo.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestChatService_SendMessage_SucceedsWhenPublishFails(t *testing.T) {
	room, alice, _ := testRoom()

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)
	roomRepo.On("TouchActivity", mock.Anything, room.ID, mock.Anything).Return(nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	bus := new(MockBroadcaster)
	bus.On("Publish", mock.Anything, room.ID, mock.Anything).
		Return(marketchat_errors.ErrTransientDelivery)

	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	_, err := svc.SendMessage(context.Background(), alice, room.ID, "hello")
	assert.NoError(t, err)
}

func TestChatService_SendMessage_SucceedsWhenTouchActivityFails(t *testing.T) {
	room, alice, _ := testRoom()

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)
	roomRepo.On("TouchActivity", mock.Anything, room.ID, mock.Anything).
		Return(assert.AnError)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	bus := new(MockBroadcaster)
	bus.On("Publish", mock.Anything, room.ID, mock.Anything).Return(nil)

	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	_, err := svc.SendMessage(context.Background(), alice, room.ID, "hello")
	assert.NoError(t, err)
}

func TestChatService_ListMessages_RejectsNonParticipant(t *testing.T) {
	room, _, _ := testRoom()

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)
	msgRepo := new(MockMessageRepository)
	svc := NewChatService(roomRepo, msgRepo, new(MockBroadcaster), nil)

	_, err := svc.ListMessages(context.Background(), uuid.New(), room.ID, time.Time{})
	assert.ErrorIs(t, err, marketchat_errors.ErrNotFound)
	msgRepo.AssertNotCalled(t, "ListRoomMessages", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_ListMessages_PassesWatermarkThrough(t *testing.T) {
	room, alice, _ := testRoom()
	after := time.Now().Add(-time.Minute)

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("ListRoomMessages", mock.Anything, room.ID, after).
		Return([]chat.Message{}, nil)

	svc := NewChatService(roomRepo, msgRepo, new(MockBroadcaster), nil)

	_, err := svc.ListMessages(context.Background(), alice, room.ID, after)
	require.NoError(t, err)
	msgRepo.AssertExpectations(t)
}

func TestChatService_MarkRead_RejectsOwnMessages(t *testing.T) {
	room, alice, _ := testRoom()
	own := chat.Message{
		ID:       uuid.New(),
		RoomID:   room.ID,
		SenderID: alice,
	}

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("GetByID", mock.Anything, own.ID).Return(own, nil)

	svc := NewChatService(roomRepo, msgRepo, new(MockBroadcaster), nil)

	err := svc.MarkRead(context.Background(), alice, room.ID, []uuid.UUID{own.ID})
	assert.ErrorIs(t, err, marketchat_errors.ErrInvalidOperation)
	msgRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_MarkRead_RejectsForeignRoomMessage(t *testing.T) {
	room, alice, bob := testRoom()
	foreign := chat.Message{
		ID:       uuid.New(),
		RoomID:   uuid.New(),
		SenderID: bob,
	}

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil)

	svc := NewChatService(roomRepo, msgRepo, new(MockBroadcaster), nil)

	err := svc.MarkRead(context.Background(), alice, room.ID, []uuid.UUID{foreign.ID})
	assert.ErrorIs(t, err, marketchat_errors.ErrNotFound)
}

func TestChatService_MarkRead_PublishesTransitionedIdsOnly(t *testing.T) {
	room, alice, bob := testRoom()
	unread := chat.Message{ID: uuid.New(), RoomID: room.ID, SenderID: bob}
	alreadyRead := chat.Message{
		ID:       uuid.New(),
		RoomID:   room.ID,
		SenderID: bob,
		ReadAt:   sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
	}
	ids := []uuid.UUID{unread.ID, alreadyRead.ID}

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("GetByID", mock.Anything, unread.ID).Return(unread, nil)
	msgRepo.On("GetByID", mock.Anything, alreadyRead.ID).Return(alreadyRead, nil)
	msgRepo.On("MarkRead", mock.Anything, ids, mock.Anything).
		Return([]uuid.UUID{unread.ID}, nil)

	bus := new(MockBroadcaster)
	bus.On("Publish", mock.Anything, room.ID, mock.MatchedBy(func(env events.Envelope) bool {
		return env.EventType == events.EventMessageRead
	})).Return(nil)

	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	err := svc.MarkRead(context.Background(), alice, room.ID, ids)
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestChatService_MarkRead_NoPublishWhenNothingTransitioned(t *testing.T) {
	room, alice, bob := testRoom()
	alreadyRead := chat.Message{
		ID:       uuid.New(),
		RoomID:   room.ID,
		SenderID: bob,
		ReadAt:   sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
	}

	roomRepo := new(MockRoomRepository)
	roomRepo.On("GetByID", mock.Anything, room.ID).Return(room, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("GetByID", mock.Anything, alreadyRead.ID).Return(alreadyRead, nil)
	msgRepo.On("MarkRead", mock.Anything, mock.Anything, mock.Anything).
		Return([]uuid.UUID{}, nil)

	bus := new(MockBroadcaster)
	svc := NewChatService(roomRepo, msgRepo, bus, nil)

	err := svc.MarkRead(context.Background(), alice, room.ID, []uuid.UUID{alreadyRead.ID})
	require.NoError(t, err)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
