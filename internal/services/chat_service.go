package services

import (
	"context"
	"strings"
	"time"

	"marketchat/internal/domain/chat"
	"marketchat/internal/events"
	"marketchat/internal/repository"
	marketchat_errors "marketchat/pkg/errors"
	"marketchat/pkg/logger"

	"github.com/google/uuid"
)

// ChatService owns the server side of message flow: durable writes first,
// best-effort fan-out second. A failed broadcast never fails the operation
// that triggered it; the reconciliation poller closes the gap.
type ChatService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	broadcaster events.Broadcaster
	log         *logger.Logger
}

func NewChatService(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, broadcaster events.Broadcaster, log *logger.Logger) *ChatService {
	return &ChatService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		log:         log,
	}
}

// SendMessage persists a message and then publishes it on the room channel.
// The store write is the only awaited step; once it succeeds the send is
// successful regardless of what the channel does.
func (s *ChatService) SendMessage(ctx context.Context, senderID, roomID uuid.UUID, content string) (chat.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return chat.Message{}, marketchat_errors.ErrInvalidInput
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return chat.Message{}, err
	}
	if !room.HasParticipant(senderID) {
		return chat.Message{}, marketchat_errors.ErrNotFound
	}

	msg := chat.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return chat.Message{}, err
	}

	if err := s.roomRepo.TouchActivity(ctx, roomID, msg.CreatedAt); err != nil {
		s.logTransient("touch activity for room %s: %v", roomID, err)
	}

	s.broadcastMessage(ctx, msg)

	return msg, nil
}

// ListMessages returns the room's messages newer than after (full history
// for a zero after), ascending by creation time. This is both the room-open
// read and the poller's incremental query.
func (s *ChatService) ListMessages(ctx context.Context, userID, roomID uuid.UUID, after time.Time) ([]chat.Message, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, marketchat_errors.ErrNotFound
	}
	return s.messageRepo.ListRoomMessages(ctx, roomID, after)
}

// MarkRead transitions the given messages to read on behalf of readerID.
// Messages authored by the reader are rejected; already-read messages are
// skipped, so read_at is set at most once and never reverted.
func (s *ChatService) MarkRead(ctx context.Context, readerID, roomID uuid.UUID, messageIDs []uuid.UUID) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(readerID) {
		return marketchat_errors.ErrNotFound
	}

	for _, id := range messageIDs {
		msg, err := s.messageRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if msg.RoomID != roomID {
			return marketchat_errors.ErrNotFound
		}
		if msg.SenderID == readerID {
			return marketchat_errors.ErrInvalidOperation
		}
	}

	now := time.Now()
	updated, err := s.messageRepo.MarkRead(ctx, messageIDs, now)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return nil
	}

	env, err := events.NewReadEnvelope(events.ReadEvent{
		RoomID:     roomID,
		ReaderID:   readerID,
		MessageIDs: updated,
		ReadAt:     now,
	})
	if err != nil {
		s.logTransient("encode read event for room %s: %v", roomID, err)
		return nil
	}
	if err := s.broadcaster.Publish(ctx, roomID, env); err != nil {
		s.logTransient("publish read event for room %s: %v", roomID, err)
	}
	return nil
}

func (s *ChatService) broadcastMessage(ctx context.Context, msg chat.Message) {
	env, err := events.NewMessageEnvelope(msg)
	if err != nil {
		s.logTransient("encode message %s: %v", msg.ID, err)
		return
	}
	if err := s.broadcaster.Publish(ctx, msg.RoomID, env); err != nil {
		s.logTransient("publish message %s: %v", msg.ID, err)
	}
}

func (s *ChatService) logTransient(template string, args ...interface{}) {
	if s.log != nil {
		s.log.Warnf(template, args...)
	}
}
