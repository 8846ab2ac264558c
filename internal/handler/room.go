package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mfadillah/kostly/internal/repository"
)

// RoomHandler serves the public room listing.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(r *repository.RoomRepo) *RoomHandler {
	return &RoomHandler{Rooms: r}
}

type roomPart struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	MonthlyRate *int64 `json:"monthly_rate"`
	Status      string `json:"status"`
}

// ListAvailable returns all rooms currently open for booking.  The
// route sits behind the Redis response cache, so staleness is bounded
// by the cache TTL.
func (h *RoomHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.ListAvailable(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
	}

	out := make([]roomPart, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomPart{ID: r.ID, Name: r.Name, MonthlyRate: r.MonthlyRate, Status: r.Status})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}
