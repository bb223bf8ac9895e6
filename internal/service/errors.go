package service

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule failure.  The set is closed: the HTTP
// layer maps each kind to exactly one status code, and any error that is
// not an *Error is an internal failure.
type Kind int

const (
	// KindForbidden: the caller may not perform the operation (no
	// enrollment, ineligible ticket, already booked, no vacancy, foreign
	// booking).
	KindForbidden Kind = iota + 1
	// KindNotFound: a referenced entity does not exist.
	KindNotFound
	// KindPaymentRequired: the caller's ticket is not paid (or, on the
	// hotel catalog, does not cover a hotel).
	KindPaymentRequired
)

func (k Kind) String() string {
	switch k {
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindPaymentRequired:
		return "PaymentRequired"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a business-rule failure carrying its kind and a message that is
// safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Message }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, service.ErrForbidden).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind-only targets for errors.Is.
var (
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrPaymentRequired = &Error{Kind: KindPaymentRequired}
)

// Messages surfaced to clients.
const (
	MsgNoEnrollment    = "user has no enrollment"
	MsgNoTicket        = "user has no ticket"
	MsgTicketNotPaid   = "ticket has not been paid"
	MsgTicketNoHotel   = "ticket does not include hotel"
	MsgAlreadyBooked   = "user already booked a room"
	MsgRoomNotFound    = "room not found"
	MsgNoVacancies     = "no vacancies available for this room"
	MsgBookingNotFound = "user has no booking"
	MsgBookingNotOwned = "booking doesn't belong to user"
	MsgHotelNotFound   = "hotel not found"
)

func forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func paymentRequired(msg string) error { return &Error{Kind: KindPaymentRequired, Message: msg} }
