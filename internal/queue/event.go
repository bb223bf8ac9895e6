// Package queue defines the booking events exchanged over the message broker,
// the publisher that emits them and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys on the booking exchange.
const (
	RoutingBookingCreated = "booking.created"
	RoutingBookingMoved   = "booking.moved"
)

// BookingCreatedEvent is published when a user books a room.  It carries
// enough for downstream consumers to log or notify without querying the
// primary database.
type BookingCreatedEvent struct {
	EventID    string `json:"event_id"`
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	RoomID     uint64 `json:"room_id"`
	OccurredAt string `json:"occurred_at"`
}

// BookingMovedEvent is published when a booking changes rooms.
type BookingMovedEvent struct {
	EventID    string `json:"event_id"`
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	FromRoomID uint64 `json:"from_room_id"`
	ToRoomID   uint64 `json:"to_room_id"`
	OccurredAt string `json:"occurred_at"`
}

func NewBookingCreatedEvent(bookingID, userID, roomID uint64) BookingCreatedEvent {
	return BookingCreatedEvent{
		EventID:    uuid.NewString(),
		BookingID:  bookingID,
		UserID:     userID,
		RoomID:     roomID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func NewBookingMovedEvent(bookingID, userID, fromRoomID, toRoomID uint64) BookingMovedEvent {
	return BookingMovedEvent{
		EventID:    uuid.NewString(),
		BookingID:  bookingID,
		UserID:     userID,
		FromRoomID: fromRoomID,
		ToRoomID:   toRoomID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
