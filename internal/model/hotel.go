package model

import "time"

// Hotel is a lodging partner of the event.  Rooms is only populated by the
// single-hotel lookup.
type Hotel struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Rooms     []Room    `json:"Rooms,omitempty"`
}

// Room belongs to exactly one hotel and holds at most Capacity bookings.
type Room struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Capacity  uint32    `json:"capacity"`
	HotelID   uint64    `json:"hotelId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomOccupancy is a room together with the number of bookings it holds at
// the time it was read.
type RoomOccupancy struct {
	Room
	Booked uint32 `json:"booked"`
}

// HasVacancy reports whether one more booking fits into the room.
func (r RoomOccupancy) HasVacancy() bool {
	return r.Booked < r.Capacity
}
