package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RoomRepo reads rooms and their occupancy.  Capacity never changes through
// this service, so the repository is read-only apart from the row lock taken
// by booking writes.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo given a DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// FindByID returns the room with its current booking count.  The count is a
// point-in-time snapshot; writers must re-check it under LockForUpdateTx.
// ErrRoomNotFound is returned for an unknown id.
func (r *RoomRepo) FindByID(ctx context.Context, roomID uint64) (*model.RoomOccupancy, error) {
	const q = `SELECT r.id, r.name, r.capacity, r.hotel_id, r.created_at, r.updated_at,
                      (SELECT COUNT(*) FROM bookings b WHERE b.room_id = r.id)
               FROM rooms r
               WHERE r.id = ?`
	var occ model.RoomOccupancy
	err := r.db.QueryRowContext(ctx, q, roomID).Scan(
		&occ.ID, &occ.Name, &occ.Capacity, &occ.HotelID, &occ.CreatedAt, &occ.UpdatedAt,
		&occ.Booked,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room %d: %w", roomID, err)
	}
	return &occ, nil
}

// LockForUpdateTx locks the room row for the rest of the transaction and
// returns its capacity and booking count.  Every writer that adds a booking
// to the room goes through this lock, so the count cannot change until the
// caller commits or rolls back.  ErrRoomNotFound is returned for an unknown
// id.
func (r *RoomRepo) LockForUpdateTx(ctx context.Context, tx *sql.Tx, roomID uint64) (capacity, booked uint32, err error) {
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM rooms WHERE id = ? FOR UPDATE`, roomID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrRoomNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("lock room %d: %w", roomID, err)
	}
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE room_id = ?`, roomID).Scan(&booked)
	if err != nil {
		return 0, 0, fmt.Errorf("count bookings of room %d: %w", roomID, err)
	}
	return capacity, booked, nil
}
