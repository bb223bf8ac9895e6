package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// EnrollmentRepo reads enrollments together with their tickets and ticket
// types.  It is read-only: enrollments and tickets are managed elsewhere on
// the platform.
type EnrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo returns a new EnrollmentRepo bound to the given database.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

// FindWithTicketsByUser returns the user's enrollment with its tickets
// ordered by id, each joined with its ticket type.  An enrollment without
// tickets is returned with an empty Tickets slice.  ErrEnrollmentNotFound is
// returned when the user has no enrollment.
func (r *EnrollmentRepo) FindWithTicketsByUser(ctx context.Context, userID uint64) (*model.Enrollment, error) {
	const q = `SELECT e.id, e.user_id, e.name,
                      t.id, t.enrollment_id, t.status,
                      tt.id, tt.name, tt.price, tt.is_remote, tt.includes_hotel
               FROM enrollments e
               LEFT JOIN tickets t ON t.enrollment_id = e.id
               LEFT JOIN ticket_types tt ON tt.id = t.ticket_type_id
               WHERE e.user_id = ?
               ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query enrollment: %w", err)
	}
	defer rows.Close()

	var enr *model.Enrollment
	for rows.Next() {
		var (
			e            model.Enrollment
			ticketID     sql.NullInt64
			enrollmentID sql.NullInt64
			status       sql.NullString
			typeID       sql.NullInt64
			typeName     sql.NullString
			price        sql.NullInt64
			isRemote     sql.NullBool
			inclHotel    sql.NullBool
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name,
			&ticketID, &enrollmentID, &status,
			&typeID, &typeName, &price, &isRemote, &inclHotel); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		if enr == nil {
			e.Tickets = []model.Ticket{}
			enr = &e
		}
		// LEFT JOIN yields one all-NULL ticket row for an enrollment without tickets
		if !ticketID.Valid {
			continue
		}
		enr.Tickets = append(enr.Tickets, model.Ticket{
			ID:           uint64(ticketID.Int64),
			EnrollmentID: uint64(enrollmentID.Int64),
			Status:       model.TicketStatus(status.String),
			Type: model.TicketType{
				ID:            uint64(typeID.Int64),
				Name:          typeName.String,
				Price:         uint32(price.Int64),
				IsRemote:      isRemote.Bool,
				IncludesHotel: inclHotel.Bool,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollment: %w", err)
	}
	if enr == nil {
		return nil, ErrEnrollmentNotFound
	}
	return enr, nil
}
