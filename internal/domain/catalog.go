package domain

import "strings"

type Airport struct {
	ID             int64
	Name           string
	ClosestBigCity string
	Image          *string
}

func (a Airport) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "This field may not be blank.")
	}
	if strings.TrimSpace(a.ClosestBigCity) == "" {
		return NewValidationError("closest_big_city", "This field may not be blank.")
	}
	return nil
}

type AirplaneType struct {
	ID    int64
	Name  string
	Image *string
}

func (t AirplaneType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("name", "This field may not be blank.")
	}
	return nil
}

type Airplane struct {
	ID             int64
	Name           string
	Rows           int
	SeatsInRow     int
	AirplaneTypeID int64
	AirplaneType   string
}

func (a Airplane) Capacity() int {
	return a.Layout().Capacity()
}

func (a Airplane) Layout() SeatLayout {
	return SeatLayout{Rows: a.Rows, SeatsInRow: a.SeatsInRow}
}

func (a Airplane) Validate() error {
	v := &ValidationError{Fields: FieldErrors{}}
	if strings.TrimSpace(a.Name) == "" {
		v.Fields.Add("name", "This field may not be blank.")
	}
	if a.Rows < 1 {
		v.Fields.Add("rows", "Ensure this value is greater than or equal to 1.")
	}
	if a.SeatsInRow < 1 {
		v.Fields.Add("seats_in_row", "Ensure this value is greater than or equal to 1.")
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

type Crew struct {
	ID        int64
	FirstName string
	LastName  string
}

func (c Crew) Validate() error {
	v := &ValidationError{Fields: FieldErrors{}}
	if strings.TrimSpace(c.FirstName) == "" {
		v.Fields.Add("first_name", "This field may not be blank.")
	}
	if strings.TrimSpace(c.LastName) == "" {
		v.Fields.Add("last_name", "This field may not be blank.")
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Route is a directed source -> destination airport pair.
type Route struct {
	ID              int64
	SourceID        int64
	DestinationID   int64
	Distance        int
	SourceName      string
	DestinationName string
}

func (r Route) Validate() error {
	v := &ValidationError{Fields: FieldErrors{}}
	if r.Distance < 1 {
		v.Fields.Add("distance", "Ensure this value is greater than or equal to 1.")
	}
	if r.SourceID == r.DestinationID {
		v.Fields.Add("non_field_errors", "Source and destination airports must differ.")
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

type AirportFilter struct {
	Name string
	Page Page
}

type AirplaneTypeFilter struct {
	Name string
	Page Page
}

type AirplaneFilter struct {
	AirplaneTypeID int64
	Name           string
	Page           Page
}

type RouteFilter struct {
	SourceID      int64
	DestinationID int64
	Page          Page
}

type CrewFilter struct {
	Name string
	Page Page
}
