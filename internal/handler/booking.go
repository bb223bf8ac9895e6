package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingEngine is the booking use-case surface; *service.BookingService
// implements it.
type BookingEngine interface {
	CreateBooking(ctx context.Context, userID, roomID uint64) (uint64, error)
	GetUserBooking(ctx context.Context, userID uint64) (*model.BookingView, error)
	UpdateBooking(ctx context.Context, userID, bookingID, newRoomID uint64) error
}

type BookingHandler struct {
	Bookings BookingEngine
	Log      *zap.Logger
}

func NewBookingHandler(b BookingEngine, log *zap.Logger) *BookingHandler {
	if b == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b, Log: log}
}

type roomReq struct {
	RoomID uint64 `json:"roomId" validate:"required,gt=0"`
}

type bookingIDResp struct {
	BookingID uint64 `json:"bookingId"`
}

// Create books a room for the caller.  POST /booking
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req roomReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	id, err := h.Bookings.CreateBooking(c.Request().Context(), uid, req.RoomID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, bookingIDResp{BookingID: id})
}

// Get returns the caller's booking with its room.  GET /booking
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	v, err := h.Bookings.GetUserBooking(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Update moves the caller's booking to another room.  PUT /booking/:bookingId
func (h *BookingHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseID(c, "bookingId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookingId"})
	}
	var req roomReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Bookings.UpdateBooking(c.Request().Context(), uid, bookingID, req.RoomID); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, bookingIDResp{BookingID: bookingID})
}
