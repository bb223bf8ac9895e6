package model

// TicketStatus is the payment state of a ticket.
type TicketStatus string

const (
	TicketReserved TicketStatus = "RESERVED"
	TicketPaid     TicketStatus = "PAID"
	TicketExpired  TicketStatus = "EXPIRED"
)

// TicketType describes what a ticket entitles its holder to.
type TicketType struct {
	ID            uint64 // ticket_types.id
	Name          string // ticket_types.name
	Price         uint32 // ticket_types.price
	IsRemote      bool   // ticket_types.is_remote
	IncludesHotel bool   // ticket_types.includes_hotel
}

// HotelEligible reports whether the ticket type grants a hotel room: it must
// include the hotel and must not be a remote-only pass.
func (t TicketType) HotelEligible() bool {
	return t.IncludesHotel && !t.IsRemote
}

// Ticket is the active pass attached to an enrollment.
type Ticket struct {
	ID           uint64       // tickets.id
	EnrollmentID uint64       // tickets.enrollment_id
	Status       TicketStatus // tickets.status
	Type         TicketType   // joined from ticket_types
}

// Enrollment is a user's registration for the event.  Tickets is ordered by
// ticket id; the first entry is the active ticket.
type Enrollment struct {
	ID      uint64   // enrollments.id
	UserID  uint64   // enrollments.user_id
	Name    string   // enrollments.name
	Tickets []Ticket // tickets of this enrollment
}

// ActiveTicket returns the enrollment's active ticket, or nil when the user
// has not picked one yet.
func (e *Enrollment) ActiveTicket() *Ticket {
	if e == nil || len(e.Tickets) == 0 {
		return nil
	}
	return &e.Tickets[0]
}
