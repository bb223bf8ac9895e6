package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelCatalog lists hotels for eligible users.
type HotelCatalog interface {
	ListHotels(ctx context.Context, userID uint64) ([]model.Hotel, error)
	GetHotel(ctx context.Context, userID, hotelID uint64) (*model.Hotel, error)
}

type HotelHandler struct {
	Hotels HotelCatalog
	Log    *zap.Logger
}

func NewHotelHandler(h HotelCatalog, log *zap.Logger) *HotelHandler {
	return &HotelHandler{Hotels: h, Log: log}
}

// List handles GET /hotels.
func (h *HotelHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotels, err := h.Hotels.ListHotels(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, hotels)
}

// Get handles GET /hotels/:hotelId.
func (h *HotelHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, ok := parseID(c, "hotelId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotelId"})
	}
	hotel, err := h.Hotels.GetHotel(c.Request().Context(), uid, hotelID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, hotel)
}
