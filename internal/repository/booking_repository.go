package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingRepo owns the lifecycle of bookings.  A booking is created once per
// user and afterwards only its room changes; nothing here deletes one.
//
// Writes run the capacity check and the write in one transaction holding the
// target room's row lock, and the unique key on bookings.user_id rejects a
// second booking for the same user, so neither invariant depends on the
// caller's earlier reads.
type BookingRepo struct {
	db    *sql.DB
	rooms *RoomRepo
}

// NewBookingRepo returns a new BookingRepo.  rooms provides the row lock used
// by Create and Upsert.
func NewBookingRepo(db *sql.DB, rooms *RoomRepo) *BookingRepo {
	return &BookingRepo{db: db, rooms: rooms}
}

// DB exposes the underlying handle for callers that need their own
// transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const selectBooking = `SELECT id, user_id, room_id, created_at, updated_at FROM bookings`

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByUser returns the user's booking or ErrBookingNotFound.
func (r *BookingRepo) FindByUser(ctx context.Context, userID uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, selectBooking+` WHERE user_id = ? LIMIT 1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking of user %d: %w", userID, err)
	}
	return b, nil
}

// FindWithRoomByUser returns the user's booking id joined with its room, or
// ErrBookingNotFound.
func (r *BookingRepo) FindWithRoomByUser(ctx context.Context, userID uint64) (*model.BookingView, error) {
	const q = `SELECT b.id, r.id, r.name, r.capacity, r.hotel_id, r.created_at, r.updated_at
               FROM bookings b
               JOIN rooms r ON r.id = b.room_id
               WHERE b.user_id = ?
               LIMIT 1`
	var v model.BookingView
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&v.ID, &v.Room.ID, &v.Room.Name, &v.Room.Capacity, &v.Room.HotelID, &v.Room.CreatedAt, &v.Room.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking view of user %d: %w", userID, err)
	}
	return &v, nil
}

// Create books roomID for userID.  See Upsert for the errors returned.
func (r *BookingRepo) Create(ctx context.Context, userID, roomID uint64) (*model.Booking, error) {
	return r.Upsert(ctx, userID, roomID, 0)
}

// Upsert writes the user's booking for roomID.  With bookingID 0 a new row is
// inserted; otherwise the existing row with that id is moved to roomID in
// place.  An update never falls back to an insert.
//
// Errors: ErrRoomNotFound, ErrRoomFull (count >= capacity under the room
// lock), ErrBookingExists (insert for a user that already has a booking) and
// ErrBookingNotFound (bookingID does not belong to userID).
func (r *BookingRepo) Upsert(ctx context.Context, userID, roomID, bookingID uint64) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if bookingID != 0 {
		var owner uint64
		err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM bookings WHERE id = ? AND user_id = ? FOR UPDATE`,
			bookingID, userID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lock booking %d: %w", bookingID, err)
		}
	}

	capacity, booked, err := r.rooms.LockForUpdateTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if booked >= capacity {
		return nil, ErrRoomFull
	}

	id := bookingID
	if bookingID == 0 {
		res, err := tx.ExecContext(ctx, `INSERT INTO bookings (user_id, room_id) VALUES (?, ?)`, userID, roomID)
		if err != nil {
			if isDuplicateKey(err) {
				return nil, ErrBookingExists
			}
			return nil, fmt.Errorf("insert booking: %w", err)
		}
		last, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert booking: %w", err)
		}
		id = uint64(last)
	} else {
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET room_id = ? WHERE id = ?`, roomID, bookingID); err != nil {
			return nil, fmt.Errorf("update booking %d: %w", bookingID, err)
		}
	}

	b, err := scanBooking(tx.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("reload booking %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking tx: %w", err)
	}
	committed = true
	return b, nil
}
