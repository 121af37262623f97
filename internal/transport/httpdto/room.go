package httpdto

import (
	"time"

	"marketchat/internal/domain/chat"
)

type OpenRoomRequest struct {
	OtherUserID string `json:"other_user_id"`
	ListingID   string `json:"listing_id,omitempty"`
}

type RoomResponse struct {
	ID              string    `json:"id"`
	ParticipantLow  string    `json:"participant_low"`
	ParticipantHigh string    `json:"participant_high"`
	ListingID       string    `json:"listing_id,omitempty"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

func FromRoom(r chat.ChatRoom) RoomResponse {
	out := RoomResponse{
		ID:              r.ID.String(),
		ParticipantLow:  r.ParticipantLow.String(),
		ParticipantHigh: r.ParticipantHigh.String(),
		LastActivityAt:  r.LastActivityAt,
		CreatedAt:       r.CreatedAt,
	}
	if r.ListingID.Valid {
		out.ListingID = r.ListingID.UUID.String()
	}
	return out
}

func FromRoomSlice(rooms []chat.ChatRoom) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, FromRoom(r))
	}
	return out
}
