// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to tell a
// missing row or a violated storage invariant apart from an infrastructure
// failure, which it must never leak to clients.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrEnrollmentNotFound is returned when the user has not enrolled.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrRoomNotFound is returned when a room id does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrHotelNotFound is returned when a hotel id does not exist.
	ErrHotelNotFound = errors.New("hotel not found")
	// ErrBookingNotFound is returned when the user holds no booking, or the
	// booking id passed to an update does not belong to the user.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrBookingExists is returned when the user already holds a booking.
	ErrBookingExists = errors.New("user already has a booking")
	// ErrRoomFull is returned when the room holds as many bookings as its
	// capacity allows.
	ErrRoomFull = errors.New("room is full")
	// ErrUserNotFound is returned when no account has the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned when no session stores the token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmailExists is returned on sign-up with an email already in use.
	ErrEmailExists = errors.New("email already exists")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
