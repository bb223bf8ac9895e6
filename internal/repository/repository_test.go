package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var (
	now         = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bookingCols = []string{"id", "user_id", "room_id", "created_at", "updated_at"}
)

const (
	lockBookingSQL = `SELECT user_id FROM bookings WHERE id = \? AND user_id = \? FOR UPDATE`
	lockRoomSQL    = `SELECT capacity FROM rooms WHERE id = \? FOR UPDATE`
	countRoomSQL   = `SELECT COUNT\(\*\) FROM bookings WHERE room_id = \?`
	insertSQL      = `INSERT INTO bookings \(user_id, room_id\) VALUES \(\?, \?\)`
	updateSQL      = `UPDATE bookings SET room_id = \? WHERE id = \?`
	reloadSQL      = `SELECT id, user_id, room_id, created_at, updated_at FROM bookings WHERE id = \?`
)

func expectRoomLock(mock sqlmock.Sqlmock, roomID uint64, capacity, booked int64) {
	mock.ExpectQuery(lockRoomSQL).WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(capacity))
	mock.ExpectQuery(countRoomSQL).WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(booked))
}

func newBookingRepo(db *sql.DB) *BookingRepo { return NewBookingRepo(db, NewRoomRepo(db)) }

func TestBookingRepo_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	expectRoomLock(mock, 7, 2, 1)
	mock.ExpectExec(insertSQL).WithArgs(uint64(3), uint64(7)).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(reloadSQL).WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(11, 3, 7, now, now))
	mock.ExpectCommit()

	b, err := repo.Create(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), b.ID)
	assert.Equal(t, uint64(3), b.UserID)
	assert.Equal(t, uint64(7), b.RoomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateRoomFull(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	expectRoomLock(mock, 7, 1, 1)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrRoomFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateRoomNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WithArgs(uint64(7)).WillReturnRows(sqlmock.NewRows([]string{"capacity"}))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateDuplicateUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	expectRoomLock(mock, 7, 5, 0)
	mock.ExpectExec(insertSQL).WithArgs(uint64(3), uint64(7)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3' for key 'uq_bookings_user'"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrBookingExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_UpsertMovesInPlace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBookingSQL).WithArgs(uint64(11), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
	expectRoomLock(mock, 8, 2, 0)
	mock.ExpectExec(updateSQL).WithArgs(uint64(8), uint64(11)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(reloadSQL).WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(11, 3, 8, now, now.Add(time.Minute)))
	mock.ExpectCommit()

	b, err := repo.Upsert(context.Background(), 3, 8, 11)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), b.ID)
	assert.Equal(t, uint64(8), b.RoomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_UpsertForeignBooking(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBookingSQL).WithArgs(uint64(11), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, err := repo.Upsert(context.Background(), 4, 8, 11)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_UpsertTargetFull(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBookingSQL).WithArgs(uint64(11), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
	expectRoomLock(mock, 8, 1, 1)
	mock.ExpectRollback()

	_, err := repo.Upsert(context.Background(), 3, 8, 11)
	assert.ErrorIs(t, err, ErrRoomFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_BeginFails(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)
	boom := errors.New("too many connections")
	mock.ExpectBegin().WillReturnError(boom)

	_, err := repo.Create(context.Background(), 3, 7)
	assert.ErrorIs(t, err, boom)
}

func TestBookingRepo_FindByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	mock.ExpectQuery(`SELECT id, user_id, room_id, created_at, updated_at FROM bookings WHERE user_id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(11, 3, 7, now, now))
	b, err := repo.FindByUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), b.ID)

	mock.ExpectQuery(`FROM bookings WHERE user_id = \?`).WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	_, err = repo.FindByUser(context.Background(), 4)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_FindWithRoomByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newBookingRepo(db)

	cols := []string{"b.id", "r.id", "r.name", "r.capacity", "r.hotel_id", "r.created_at", "r.updated_at"}
	mock.ExpectQuery(`FROM bookings b\s+JOIN rooms r`).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(11, 7, "Suite", 3, 2, now, now))
	v, err := repo.FindWithRoomByUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), v.ID)
	assert.Equal(t, model.Room{ID: 7, Name: "Suite", Capacity: 3, HotelID: 2, CreatedAt: now, UpdatedAt: now}, v.Room)

	mock.ExpectQuery(`FROM bookings b\s+JOIN rooms r`).WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.FindWithRoomByUser(context.Background(), 4)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepo_FindByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	cols := []string{"id", "name", "capacity", "hotel_id", "created_at", "updated_at", "booked"}
	mock.ExpectQuery(`FROM rooms r\s+WHERE r.id = \?`).WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, "101", 2, 1, now, now, 1))
	occ, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), occ.Capacity)
	assert.Equal(t, uint32(1), occ.Booked)
	assert.True(t, occ.HasVacancy())

	mock.ExpectQuery(`FROM rooms r`).WithArgs(uint64(8)).WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.FindByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_FindWithTicketsByUser(t *testing.T) {
	cols := []string{"e.id", "e.user_id", "e.name", "t.id", "t.enrollment_id", "t.status",
		"tt.id", "tt.name", "tt.price", "tt.is_remote", "tt.includes_hotel"}

	t.Run("with tickets", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`FROM enrollments e`).WithArgs(uint64(3)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(5, 3, "Ana", 20, 5, "PAID", 1, "Presencial + hotel", 600, false, true).
				AddRow(5, 3, "Ana", 21, 5, "RESERVED", 2, "Online", 100, true, false))

		e, err := NewEnrollmentRepo(db).FindWithTicketsByUser(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, e.Tickets, 2)
		active := e.ActiveTicket()
		assert.Equal(t, uint64(20), active.ID)
		assert.Equal(t, model.TicketPaid, active.Status)
		assert.True(t, active.Type.HotelEligible())
		assert.True(t, e.Tickets[1].Type.IsRemote)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without tickets", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`FROM enrollments e`).WithArgs(uint64(3)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 3, "Ana", nil, nil, nil, nil, nil, nil, nil, nil))

		e, err := NewEnrollmentRepo(db).FindWithTicketsByUser(context.Background(), 3)
		require.NoError(t, err)
		assert.Empty(t, e.Tickets)
		assert.Nil(t, e.ActiveTicket())
	})

	t.Run("not enrolled", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`FROM enrollments e`).WithArgs(uint64(3)).WillReturnRows(sqlmock.NewRows(cols))

		_, err := NewEnrollmentRepo(db).FindWithTicketsByUser(context.Background(), 3)
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestHotelRepo(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepo(db)
	hotelCols := []string{"id", "name", "image", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM hotels ORDER BY id`).WillReturnRows(sqlmock.NewRows(hotelCols))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	mock.ExpectQuery(`FROM hotels WHERE id = \?`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(hotelCols).AddRow(1, "Harbor Inn", "https://img/1.png", now, now))
	mock.ExpectQuery(`FROM rooms WHERE hotel_id = \? ORDER BY id`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "hotel_id", "created_at", "updated_at"}).
			AddRow(10, "101", 1, 1, now, now).
			AddRow(11, "102", 3, 1, now, now))
	h, err := repo.GetWithRooms(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Inn", h.Name)
	require.Len(t, h.Rooms, 2)
	assert.Equal(t, uint32(3), h.Rooms[1].Capacity)

	mock.ExpectQuery(`FROM hotels WHERE id = \?`).WithArgs(uint64(2)).WillReturnRows(sqlmock.NewRows(hotelCols))
	_, err = repo.GetWithRooms(context.Background(), 2)
	assert.ErrorIs(t, err, ErrHotelNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec(`INSERT INTO sessions`).WithArgs(uint64(3), "tok").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), 3, "tok"))

	mock.ExpectQuery(`FROM sessions WHERE token=\?`).WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "created_at"}).AddRow(1, 3, "tok", now))
	s, err := repo.FindByToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), s.UserID)

	mock.ExpectQuery(`FROM sessions WHERE token=\?`).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "created_at"}))
	_, err = repo.FindByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateNormalizesAndDetectsDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).WithArgs("ana@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	id, err := repo.Create(context.Background(), "  Ana@Example.com ", "secret1", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)

	mock.ExpectExec(`INSERT INTO users`).WithArgs("ana@example.com", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062})
	_, err = repo.Create(context.Background(), "ana@example.com", "secret1", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)
	cols := []string{"id", "email", "password_hash", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM users WHERE email = \?`).WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(9, "ana@example.com", "hash", now, now))
	u, err := repo.GetByEmail(context.Background(), " ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), u.ID)

	mock.ExpectQuery(`FROM users WHERE email = \?`).WithArgs("bo@example.com").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.GetByEmail(context.Background(), "bo@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_DeleteByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(`DELETE FROM sessions WHERE user_id=\?`).WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, NewSessionRepo(db).DeleteByUser(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}
