package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// RoomFinder reads a room with its current occupancy.
type RoomFinder interface {
	FindByID(ctx context.Context, roomID uint64) (*model.RoomOccupancy, error)
}

// BookingStore persists bookings.  Create and Upsert must check capacity and
// write atomically and must reject a second booking for the same user; see
// repository.BookingRepo.
type BookingStore interface {
	FindByUser(ctx context.Context, userID uint64) (*model.Booking, error)
	FindWithRoomByUser(ctx context.Context, userID uint64) (*model.BookingView, error)
	Create(ctx context.Context, userID, roomID uint64) (*model.Booking, error)
	Upsert(ctx context.Context, userID, roomID, bookingID uint64) (*model.Booking, error)
}

// EventPublisher announces booking changes to other services.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
	PublishBookingMoved(ctx context.Context, ev queue.BookingMovedEvent) error
}

// BookingService decides whether a user may book or move into a room.  Every
// precondition is checked in a fixed order and the first failure is returned
// as an *Error; later checks do not run.
type BookingService struct {
	enrollments EnrollmentFinder
	rooms       RoomFinder
	bookings    BookingStore
	events      EventPublisher
	log         *zap.Logger
}

// NewBookingService wires the service.  events may be nil, in which case no
// events are published.
func NewBookingService(enrollments EnrollmentFinder, rooms RoomFinder, bookings BookingStore, events EventPublisher, log *zap.Logger) *BookingService {
	if enrollments == nil || rooms == nil || bookings == nil {
		panic("nil store passed to NewBookingService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{enrollments: enrollments, rooms: rooms, bookings: bookings, events: events, log: log}
}

// CreateBooking books roomID for userID and returns the new booking id.
//
// Order of checks: enrollment and ticket exist (Forbidden), ticket is paid
// (PaymentRequired), ticket type includes the hotel and is not remote
// (Forbidden), user has no booking yet (Forbidden), room exists (NotFound),
// room has a vacancy (Forbidden).
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID uint64) (uint64, error) {
	ticket, err := paidTicket(ctx, s.enrollments, userID)
	if err != nil {
		return 0, err
	}
	if !ticket.Type.HotelEligible() {
		return 0, forbidden(MsgTicketNoHotel)
	}

	_, err = s.bookings.FindByUser(ctx, userID)
	switch {
	case err == nil:
		return 0, forbidden(MsgAlreadyBooked)
	case !errors.Is(err, repository.ErrBookingNotFound):
		return 0, fmt.Errorf("check existing booking: %w", err)
	}

	if err := s.checkVacancy(ctx, roomID); err != nil {
		return 0, err
	}

	// The store repeats the vacancy and uniqueness checks under a lock;
	// a concurrent request may have taken the last slot since our read.
	b, err := s.bookings.Create(ctx, userID, roomID)
	if err != nil {
		return 0, s.mapWriteError(err)
	}

	s.log.Info("booking created",
		zap.Uint64("booking_id", b.ID), zap.Uint64("user_id", userID), zap.Uint64("room_id", roomID))
	if s.events != nil {
		ev := queue.NewBookingCreatedEvent(b.ID, userID, roomID)
		if err := s.events.PublishBookingCreated(ctx, ev); err != nil {
			s.log.Warn("publish booking created failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
		}
	}
	return b.ID, nil
}

// GetUserBooking returns the user's booking with its room, or NotFound.
func (s *BookingService) GetUserBooking(ctx context.Context, userID uint64) (*model.BookingView, error) {
	v, err := s.bookings.FindWithRoomByUser(ctx, userID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, notFound(MsgBookingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return v, nil
}

// UpdateBooking moves the user's booking bookingID to newRoomID, keeping the
// booking id.
//
// Order of checks: the user's booking exists and has id bookingID
// (Forbidden), the target room exists (NotFound), it has a vacancy
// (Forbidden).  Enrollment and payment are not re-checked: holding a
// booking implies they passed when it was created.
func (s *BookingService) UpdateBooking(ctx context.Context, userID, bookingID, newRoomID uint64) error {
	current, err := s.bookings.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return forbidden(MsgBookingNotOwned)
	}
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	if current.ID != bookingID {
		return forbidden(MsgBookingNotOwned)
	}

	if err := s.checkVacancy(ctx, newRoomID); err != nil {
		return err
	}

	if _, err := s.bookings.Upsert(ctx, userID, newRoomID, bookingID); err != nil {
		return s.mapWriteError(err)
	}

	s.log.Info("booking moved",
		zap.Uint64("booking_id", bookingID), zap.Uint64("user_id", userID),
		zap.Uint64("from_room_id", current.RoomID), zap.Uint64("to_room_id", newRoomID))
	if s.events != nil {
		ev := queue.NewBookingMovedEvent(bookingID, userID, current.RoomID, newRoomID)
		if err := s.events.PublishBookingMoved(ctx, ev); err != nil {
			s.log.Warn("publish booking moved failed", zap.Uint64("booking_id", bookingID), zap.Error(err))
		}
	}
	return nil
}

func (s *BookingService) checkVacancy(ctx context.Context, roomID uint64) error {
	room, err := s.rooms.FindByID(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return notFound(MsgRoomNotFound)
	}
	if err != nil {
		return fmt.Errorf("load room: %w", err)
	}
	if !room.HasVacancy() {
		return forbidden(MsgNoVacancies)
	}
	return nil
}

// mapWriteError turns the store's invariant violations into business errors.
func (s *BookingService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return notFound(MsgRoomNotFound)
	case errors.Is(err, repository.ErrRoomFull):
		return forbidden(MsgNoVacancies)
	case errors.Is(err, repository.ErrBookingExists):
		return forbidden(MsgAlreadyBooked)
	case errors.Is(err, repository.ErrBookingNotFound):
		return forbidden(MsgBookingNotOwned)
	default:
		return fmt.Errorf("write booking: %w", err)
	}
}
