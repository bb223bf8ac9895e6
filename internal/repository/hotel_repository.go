package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelRepo reads the hotel catalog.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a new HotelRepo bound to the given database.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// List returns every hotel ordered by id, without rooms.  An empty catalog
// yields an empty, non-nil slice.
func (r *HotelRepo) List(ctx context.Context) ([]model.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image, created_at, updated_at FROM hotels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	defer rows.Close()
	hotels := make([]model.Hotel, 0)
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Image, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return hotels, nil
}

// GetWithRooms returns one hotel with its rooms ordered by id, or
// ErrHotelNotFound.
func (r *HotelRepo) GetWithRooms(ctx context.Context, hotelID uint64) (*model.Hotel, error) {
	var h model.Hotel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, image, created_at, updated_at FROM hotels WHERE id = ?`, hotelID,
	).Scan(&h.ID, &h.Name, &h.Image, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get hotel %d: %w", hotelID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, capacity, hotel_id, created_at, updated_at FROM rooms WHERE hotel_id = ? ORDER BY id`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("list rooms of hotel %d: %w", hotelID, err)
	}
	defer rows.Close()
	h.Rooms = make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.HotelID, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		h.Rooms = append(h.Rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms of hotel %d: %w", hotelID, err)
	}
	return &h, nil
}
