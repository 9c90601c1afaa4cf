package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RoomHandlers provides HTTP handlers for room inspection endpoints.
type RoomHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListRooms returns every room that currently has members.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, RoomResponse{Room: room.Room, Users: room.Users})
	}

	h.log.Debug().Int("room_count", len(rooms)).Msg("rooms listed successfully")
	c.JSON(http.StatusOK, response)
}
