package httpdto

import (
	"time"

	"marketchat/internal/domain/chat"
)

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}

type MessageResponse struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	SenderID  string     `json:"sender_id"`
	Content   string     `json:"content"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

func FromMessage(m chat.Message) MessageResponse {
	out := MessageResponse{
		ID:        m.ID.String(),
		RoomID:    m.RoomID.String(),
		SenderID:  m.SenderID.String(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.ReadAt.Valid {
		t := m.ReadAt.Time
		out.ReadAt = &t
	}
	return out
}

func FromMessageSlice(msgs []chat.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FromMessage(m))
	}
	return out
}
