package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

type fakeEnrollments struct {
	byUser map[uint64]*model.Enrollment
	err    error
}

func (f *fakeEnrollments) FindWithTicketsByUser(_ context.Context, userID uint64) (*model.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byUser[userID]
	if !ok {
		return nil, repository.ErrEnrollmentNotFound
	}
	return e, nil
}

func enrolled(userID uint64, status model.TicketStatus, tt model.TicketType) *model.Enrollment {
	return &model.Enrollment{
		ID:      userID * 10,
		UserID:  userID,
		Tickets: []model.Ticket{{ID: userID * 100, Status: status, Type: tt}},
	}
}

var hotelTicket = model.TicketType{ID: 1, Name: "in person + hotel", IncludesHotel: true}

// memStore is an in-memory room and booking store.  Create and Upsert hold
// the mutex across the capacity check and the write, matching the row lock
// taken by the MySQL store.
type memStore struct {
	mu       sync.Mutex
	rooms    map[uint64]model.Room
	bookings map[uint64]*model.Booking // by booking id
	nextID   uint64
}

func newMemStore(rooms ...model.Room) *memStore {
	s := &memStore{rooms: map[uint64]model.Room{}, bookings: map[uint64]*model.Booking{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memStore) countLocked(roomID uint64) uint32 {
	var n uint32
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			n++
		}
	}
	return n
}

func (s *memStore) count(roomID uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(roomID)
}

func (s *memStore) byUserLocked(userID uint64) *model.Booking {
	for _, b := range s.bookings {
		if b.UserID == userID {
			return b
		}
	}
	return nil
}

func (s *memStore) FindByID(_ context.Context, roomID uint64) (*model.RoomOccupancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &model.RoomOccupancy{Room: r, Booked: s.countLocked(roomID)}, nil
}

func (s *memStore) FindByUser(_ context.Context, userID uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.byUserLocked(userID)
	if b == nil {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) FindWithRoomByUser(_ context.Context, userID uint64) (*model.BookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.byUserLocked(userID)
	if b == nil {
		return nil, repository.ErrBookingNotFound
	}
	return &model.BookingView{ID: b.ID, Room: s.rooms[b.RoomID]}, nil
}

func (s *memStore) Create(ctx context.Context, userID, roomID uint64) (*model.Booking, error) {
	return s.Upsert(ctx, userID, roomID, 0)
}

func (s *memStore) Upsert(_ context.Context, userID, roomID, bookingID uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *model.Booking
	if bookingID != 0 {
		current = s.bookings[bookingID]
		if current == nil || current.UserID != userID {
			return nil, repository.ErrBookingNotFound
		}
	}
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if s.countLocked(roomID) >= r.Capacity {
		return nil, repository.ErrRoomFull
	}
	now := time.Now()
	if current != nil {
		current.RoomID = roomID
		current.UpdatedAt = now
		cp := *current
		return &cp, nil
	}
	if s.byUserLocked(userID) != nil {
		return nil, repository.ErrBookingExists
	}
	s.nextID++
	b := &model.Booking{ID: s.nextID, UserID: userID, RoomID: roomID, CreatedAt: now, UpdatedAt: now}
	s.bookings[b.ID] = b
	cp := *b
	return &cp, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	created []queue.BookingCreatedEvent
	moved   []queue.BookingMovedEvent
	err     error
}

func (p *fakePublisher) PublishBookingCreated(_ context.Context, ev queue.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, ev)
	return p.err
}

func (p *fakePublisher) PublishBookingMoved(_ context.Context, ev queue.BookingMovedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moved = append(p.moved, ev)
	return p.err
}

type fakeHotels struct {
	hotels []model.Hotel
	err    error
}

func (f *fakeHotels) List(context.Context) ([]model.Hotel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hotels, nil
}

func (f *fakeHotels) GetWithRooms(_ context.Context, hotelID uint64) (*model.Hotel, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.hotels {
		if f.hotels[i].ID == hotelID {
			h := f.hotels[i]
			return &h, nil
		}
	}
	return nil, repository.ErrHotelNotFound
}
