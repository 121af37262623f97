package handler

import (
	"net/http"
	"time"

	"marketchat/internal/services"
	"marketchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	chat *services.ChatService
}

func NewMessageHandler(chat *services.ChatService) *MessageHandler {
	return &MessageHandler{chat: chat}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_INPUT"))
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), userID, roomID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

// List returns room messages, optionally bounded by ?after=<RFC3339Nano>,
// which is how polling clients fetch only what is newer than their
// watermark.
func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_INPUT"))
		return
	}

	var after time.Time
	if raw := c.Query("after"); raw != "" {
		after, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid after", "INVALID_INPUT"))
			return
		}
	}

	msgs, err := h.chat.ListMessages(c.Request.Context(), userID, roomID, after)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListMessagesResponse{
		Messages: httpdto.FromMessageSlice(msgs),
	}))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_INPUT"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_INPUT"))
			return
		}
		ids = append(ids, id)
	}

	if err := h.chat.MarkRead(c.Request.Context(), userID, roomID, ids); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
