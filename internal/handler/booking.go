package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mfadillah/kostly/internal/middleware"
	"github.com/mfadillah/kostly/internal/service"
)

// BookingHandler exposes the rental workflow: booking, confirmation,
// extension and room transfer.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(b *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	RoomID uint64 `json:"room_id"`
	Months int    `json:"duration_months"`
}

type extendReq struct {
	Months int `json:"months"`
}

type transferReq struct {
	NewRoomID uint64  `json:"new_room_id"`
	MoveDate  *string `json:"move_date"` // YYYY-MM-DD, defaults to today
}

// Create books a room for the authenticated tenant.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id required"})
	}

	res, err := h.Bookings.CreateBooking(c.Request().Context(), middleware.CurrentUserID(c), req.RoomID, req.Months)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Confirm idempotently re-asserts a booking.  Owner only.
func (h *BookingHandler) Confirm(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}
	if err := h.Bookings.ConfirmBooking(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking dikonfirmasi"})
}

// Extend raises an extension invoice on the caller's rental.
func (h *BookingHandler) Extend(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}
	var req extendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	res, err := h.Bookings.ExtendRental(c.Request().Context(), id, req.Months, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Transfer moves a rental to another room.  Owner only.
func (h *BookingHandler) Transfer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.NewRoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_room_id required"})
	}
	move, err := parseMoveDate(req.MoveDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "move_date must be YYYY-MM-DD"})
	}

	res, err := h.Bookings.TransferRoom(c.Request().Context(), id, req.NewRoomID, move)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// TransferPreview computes the prorated adjustment without mutating
// anything.
func (h *BookingHandler) TransferPreview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}
	newRoomID, err := strconv.ParseUint(c.QueryParam("new_room_id"), 10, 64)
	if err != nil || newRoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_room_id required"})
	}
	var movePtr *string
	if v := c.QueryParam("move_date"); v != "" {
		movePtr = &v
	}
	move, err := parseMoveDate(movePtr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "move_date must be YYYY-MM-DD"})
	}

	calc, err := h.Bookings.PreviewTransfer(c.Request().Context(), id, newRoomID, move)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, calc)
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func parseMoveDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
