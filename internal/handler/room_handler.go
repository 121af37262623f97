package handler

import (
	"net/http"

	"marketchat/internal/services"
	"marketchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Open resolves (or lazily creates) the canonical room between the caller
// and another user, optionally scoped to a listing.
func (h *RoomHandler) Open(c *gin.Context) {
	var req httpdto.OpenRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	otherID, err := uuid.Parse(req.OtherUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid other_user_id", "INVALID_INPUT"))
		return
	}

	listingID := uuid.NullUUID{}
	if req.ListingID != "" {
		id, err := uuid.Parse(req.ListingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid listing_id", "INVALID_INPUT"))
			return
		}
		listingID = uuid.NullUUID{UUID: id, Valid: true}
	}

	room, err := h.rooms.GetOrCreate(c.Request.Context(), userID, otherID, listingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRoom(room)))
}

func (h *RoomHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthenticated", "UNAUTHENTICATED"))
		return
	}

	rooms, err := h.rooms.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListRoomsResponse{
		Rooms: httpdto.FromRoomSlice(rooms),
	}))
}

func (h *RoomHandler) GetByID(c *gin.Context) {
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

	room, err := h.rooms.GetForUser(c.Request.Context(), userID, roomID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRoom(room)))
}
