package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// EnrollmentFinder resolves a user's enrollment and tickets.
type EnrollmentFinder interface {
	FindWithTicketsByUser(ctx context.Context, userID uint64) (*model.Enrollment, error)
}

// paidTicket runs the checks shared by every hotel path, in order: the user
// has an enrollment, the enrollment has a ticket, the ticket is paid.  The
// hotel-eligibility of the ticket type is left to the caller because the
// booking and catalog paths report it differently.
func paidTicket(ctx context.Context, enrollments EnrollmentFinder, userID uint64) (*model.Ticket, error) {
	enr, err := enrollments.FindWithTicketsByUser(ctx, userID)
	if errors.Is(err, repository.ErrEnrollmentNotFound) {
		return nil, forbidden(MsgNoEnrollment)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve enrollment: %w", err)
	}
	ticket := enr.ActiveTicket()
	if ticket == nil {
		return nil, forbidden(MsgNoTicket)
	}
	if ticket.Status != model.TicketPaid {
		return nil, paymentRequired(MsgTicketNotPaid)
	}
	return ticket, nil
}
