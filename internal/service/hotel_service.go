package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// HotelStore reads the hotel catalog.
type HotelStore interface {
	List(ctx context.Context) ([]model.Hotel, error)
	GetWithRooms(ctx context.Context, hotelID uint64) (*model.Hotel, error)
}

// HotelService serves the hotel catalog to users whose ticket covers a hotel.
type HotelService struct {
	enrollments EnrollmentFinder
	hotels      HotelStore
}

func NewHotelService(enrollments EnrollmentFinder, hotels HotelStore) *HotelService {
	return &HotelService{enrollments: enrollments, hotels: hotels}
}

// ListHotels returns all hotels.  The user must have a paid ticket whose type
// includes the hotel and is not remote; an ineligible ticket is reported as
// PaymentRequired, an upgrade being a payment matter on the catalog.
func (s *HotelService) ListHotels(ctx context.Context, userID uint64) ([]model.Hotel, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}
	hotels, err := s.hotels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return hotels, nil
}

// GetHotel returns one hotel with its rooms, after the same checks as
// ListHotels.
func (s *HotelService) GetHotel(ctx context.Context, userID, hotelID uint64) (*model.Hotel, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}
	h, err := s.hotels.GetWithRooms(ctx, hotelID)
	if errors.Is(err, repository.ErrHotelNotFound) {
		return nil, notFound(MsgHotelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get hotel: %w", err)
	}
	return h, nil
}

func (s *HotelService) authorize(ctx context.Context, userID uint64) error {
	ticket, err := paidTicket(ctx, s.enrollments, userID)
	if err != nil {
		return err
	}
	if !ticket.Type.HotelEligible() {
		return paymentRequired(MsgTicketNoHotel)
	}
	return nil
}
