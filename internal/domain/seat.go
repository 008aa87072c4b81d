package domain

import "fmt"

// SeatLayout is the seat grid of an airplane.
type SeatLayout struct {
	Rows       int
	SeatsInRow int
}

func (l SeatLayout) Capacity() int {
	return l.Rows * l.SeatsInRow
}

type Seat struct {
	Row  int
	Seat int
}

// SeatRangeError names the rejected coordinate and its valid range.
type SeatRangeError struct {
	Field   string
	Message string
}

func (e *SeatRangeError) Error() string {
	return e.Message
}

// ValidateSeat checks 1 <= row <= Rows and 1 <= seat <= SeatsInRow.
func ValidateSeat(row, seat int, layout SeatLayout) error {
	checks := []struct {
		value       int
		field       string
		layoutField string
		max         int
	}{
		{row, "row", "rows", layout.Rows},
		{seat, "seat", "seats_in_row", layout.SeatsInRow},
	}
	for _, c := range checks {
		if c.value < 1 || c.value > c.max {
			return &SeatRangeError{
				Field: c.field,
				Message: fmt.Sprintf("%s number must be in available range: (1, %s): (1, %d)",
					c.field, c.layoutField, c.max),
			}
		}
	}
	return nil
}

// SeatsFit checks that every sold seat still exists in layout. It guards
// moving a flight to another airplane.
func SeatsFit(sold []Seat, layout SeatLayout) error {
	for _, s := range sold {
		if err := ValidateSeat(s.Row, s.Seat, layout); err != nil {
			return NewValidationError("airplane", fmt.Sprintf(
				"Airplane cannot hold the ticket sold for row %d seat %d: %s", s.Row, s.Seat, err.Error()))
		}
	}
	return nil
}
