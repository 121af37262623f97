package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketchat/internal/events"
	"marketchat/internal/services"
	"marketchat/internal/transport/httpdto"
	"marketchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// clientFrame is what a connected client sends to manage its room
// subscriptions.
type clientFrame struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	RoomID string `json:"room_id"`
}

type ackFrame struct {
	Action string `json:"action"`
	RoomID string `json:"room_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

type Handler struct {
	auth       *services.AuthService
	hub        *Hub
	authorizer *ChannelAuthorizer
	log        *logger.Logger
}

func NewHandler(auth *services.AuthService, hub *Hub, authorizer *ChannelAuthorizer, log *logger.Logger) *Handler {
	return &Handler{auth: auth, hub: hub, authorizer: authorizer, log: log}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		h.handleFrame(c.Request.Context(), client, data)
	}

	h.hub.Unregister(client)
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.ack(client, frame, false, "malformed frame")
		return
	}

	roomID, err := uuid.Parse(frame.RoomID)
	if err != nil {
		h.ack(client, frame, false, "invalid room_id")
		return
	}
	channel := events.RoomChannel(roomID)

	switch frame.Action {
	case "subscribe":
		allowed, err := h.authorizer.CanSubscribe(ctx, client.UserID, channel)
		if err != nil {
			if h.log != nil {
				h.log.Warnf("channel authorization failed for %s: %v", channel, err)
			}
			h.ack(client, frame, false, "authorization unavailable")
			return
		}
		if !allowed {
			h.ack(client, frame, false, "not a room participant")
			return
		}
		h.hub.Subscribe(client, channel)
		h.ack(client, frame, true, "")
	case "unsubscribe":
		h.hub.Unsubscribe(client, channel)
		h.ack(client, frame, true, "")
	default:
		h.ack(client, frame, false, "unknown action")
	}
}

func (h *Handler) ack(client *Client, frame clientFrame, ok bool, errMsg string) {
	payload, err := json.Marshal(ackFrame{
		Action: frame.Action,
		RoomID: frame.RoomID,
		OK:     ok,
		Error:  errMsg,
	})
	if err != nil {
		return
	}
	client.SendMessage(payload)
}
