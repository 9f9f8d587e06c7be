package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// RoomHandler exposes the read-only room catalog.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

type roomResp struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Capacity    uint32   `json:"capacity"`
	Location    *string  `json:"location,omitempty"`
	Amenities   []string `json:"amenities"`
}

func toRoomResp(rm model.Room) roomResp {
	return roomResp{
		ID:          rm.ID,
		Name:        rm.Name,
		Description: rm.Description,
		Capacity:    rm.Capacity,
		Location:    rm.Location,
		Amenities:   rm.Amenities,
	}
}

// ListRooms handles GET /v1/rooms.  The catalog is public and ordered
// by location then name; the response cache middleware sits in front
// of this route since rooms change only through the seed process.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, toRoomResp(rm))
	}
	return c.JSON(http.StatusOK, out)
}
