package domain

import "time"

type Flight struct {
	ID            int64
	RouteID       int64
	AirplaneID    int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	CrewIDs       []int64
}

func (f Flight) Validate() error {
	if !f.ArrivalTime.After(f.DepartureTime) {
		return NewValidationError("non_field_errors", "Arrival time must be after departure time.")
	}
	return nil
}

// FlightSummary is a list row with the computed availability.
type FlightSummary struct {
	ID               int64
	DepartureTime    time.Time
	ArrivalTime      time.Time
	SourceName       string
	DestinationName  string
	AirplaneCapacity int
	TicketsAvailable int
}

type FlightDetail struct {
	ID               int64
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Route            Route
	Airplane         Airplane
	TakenPlaces      []Seat
	Crews            []Crew
	TicketsAvailable int
}

type FlightFilter struct {
	RouteID    int64
	AirplaneID int64
	Date       *time.Time
	CrewIDs    []int64
	Page       Page
}
