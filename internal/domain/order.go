package domain

import "time"

type Order struct {
	ID        int64
	UserID    string
	CreatedAt time.Time
	Tickets   []Ticket
}

type Ticket struct {
	ID       int64
	OrderID  int64
	FlightID int64
	Row      int
	Seat     int
	Flight   *Flight
}

func (t Ticket) Validate(layout SeatLayout) error {
	return ValidateSeat(t.Row, t.Seat, layout)
}

// TicketRequest is one requested seat of a booking.
type TicketRequest struct {
	FlightID int64
	Row      int
	Seat     int
}

type OrderFilter struct {
	UserID string
	Page   Page
}
