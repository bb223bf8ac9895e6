package model

import "time"

// Booking links one user to one room.  A user holds at most one booking;
// moving rooms rewrites RoomID on the same row.
type Booking struct {
	ID        uint64    // bookings.id
	UserID    uint64    // bookings.user_id
	RoomID    uint64    // bookings.room_id
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}

// BookingView is what a user sees of their booking: its id and the full room.
type BookingView struct {
	ID   uint64 `json:"id"`
	Room Room   `json:"Room"`
}
