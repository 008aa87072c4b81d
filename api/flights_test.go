package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var departure = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func TestFlightHandler_List(t *testing.T) {
	s := newTestServer()

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	filter := domain.FlightFilter{RouteID: 2, Date: &day, CrewIDs: []int64{1, 3}, Page: domain.Page{Number: 1, Size: 2}}
	s.flights.On("List", mock.Anything, filter).Return(domain.List[domain.FlightSummary]{
		Count: 3,
		Items: []domain.FlightSummary{
			{ID: 7, DepartureTime: departure, ArrivalTime: departure.Add(time.Hour), SourceName: "Boryspil", DestinationName: "Heathrow", AirplaneCapacity: 60, TicketsAvailable: 58},
		},
	}, nil).Once()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/flights/?route=2&date=2026-05-01&crew=1,3&page_size=2", nil), "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Count    int                  `json:"count"`
		Next     *string              `json:"next"`
		Previous *string              `json:"previous"`
		Results  []flightListResponse `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	require.NotNil(t, body.Next)
	assert.Contains(t, *body.Next, "page=2")
	assert.Nil(t, body.Previous)
	require.Len(t, body.Results, 1)
	assert.Equal(t, 58, body.Results[0].TicketsAvailable)
	assert.Equal(t, "Heathrow", body.Results[0].DestinationName)
	s.flights.AssertExpectations(t)
}

func TestFlightHandler_ListBadQuery(t *testing.T) {
	s := newTestServer()

	testCases := []struct {
		name  string
		query string
		code  int
		field string
	}{
		{"bad date", "date=01-05-2026", http.StatusBadRequest, "date"},
		{"bad route", "route=abc", http.StatusBadRequest, "route"},
		{"bad crew", "crew=1,x", http.StatusBadRequest, "crew"},
		{"bad page", "page=zero", http.StatusNotFound, "detail"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/flights/?"+tc.query, nil), "")
			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), `"`+tc.field+`"`)
		})
	}
	s.flights.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestFlightHandler_PageOutOfRange(t *testing.T) {
	s := newTestServer()
	s.flights.On("List", mock.Anything, mock.Anything).Return(domain.List[domain.FlightSummary]{Count: 3, Items: []domain.FlightSummary{}}, nil).Once()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/flights/?page=5", nil), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_Get(t *testing.T) {
	s := newTestServer()
	s.flights.On("Get", mock.Anything, int64(7)).Return(&domain.FlightDetail{
		ID:               7,
		DepartureTime:    departure,
		ArrivalTime:      departure.Add(time.Hour),
		Route:            domain.Route{ID: 1, SourceID: 1, DestinationID: 2, Distance: 2100},
		Airplane:         domain.Airplane{ID: 3, Name: "UR-PSA", Rows: 10, SeatsInRow: 6, AirplaneType: "Narrow body"},
		TakenPlaces:      []domain.Seat{{Row: 1, Seat: 1}},
		Crews:            []domain.Crew{{ID: 1, FirstName: "Amelia", LastName: "Earhart"}},
		TicketsAvailable: 59,
	}, nil).Once()
	s.flights.On("Get", mock.Anything, int64(8)).Return(nil, domain.ErrNotFound).Once()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/airport/flights/7/", nil), "")
	require.Equal(t, http.StatusOK, w.Code)

	var body flightDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 60, body.Airplane.Capacity)
	assert.Equal(t, "Narrow body", body.Airplane.AirplaneType)
	assert.Equal(t, []seatResponse{{Row: 1, Seat: 1}}, body.TakenPlaces)
	assert.Equal(t, int64(2), body.Route.Destination)
	assert.Equal(t, 59, body.TicketsAvailable)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/airport/flights/8/", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_Create(t *testing.T) {
	s := newTestServer()
	body := `{"route":1,"airplane":2,"departure_time":"2026-05-01T08:00:00Z","arrival_time":"2026-05-01T07:00:00Z","crews":[1]}`

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/airport/flights/", strings.NewReader(body)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(httptest.NewRequest(http.MethodPost, "/api/airport/flights/", strings.NewReader(body)), s.token(t, "1", false))
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.flights.On("Create", mock.Anything, mock.AnythingOfType("*domain.Flight")).
		Return(domain.NewValidationError("non_field_errors", "Arrival time must be after departure time.")).Once()

	w = s.do(httptest.NewRequest(http.MethodPost, "/api/airport/flights/", strings.NewReader(body)), s.token(t, "2", true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"non_field_errors":["Arrival time must be after departure time."]}`, w.Body.String())
	s.flights.AssertExpectations(t)
}

func TestFlightHandler_CreateMissingFields(t *testing.T) {
	s := newTestServer()

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/airport/flights/", strings.NewReader(`{"route":1}`)), s.token(t, "2", true))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"This field is required."}, body["airplane"])
	assert.Equal(t, []string{"This field is required."}, body["departure_time"])
	s.flights.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightHandler_PartialUpdate(t *testing.T) {
	s := newTestServer()
	arrival := departure.Add(4 * time.Hour)
	s.flights.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p flights.Patch) bool {
		return p.RouteID == nil && p.ArrivalTime != nil && p.ArrivalTime.Equal(arrival)
	})).Return(&domain.Flight{ID: 7, RouteID: 1, AirplaneID: 2, DepartureTime: departure, ArrivalTime: arrival}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/api/airport/flights/7/", strings.NewReader(`{"arrival_time":"2026-05-01T12:00:00Z"}`))
	w := s.do(req, s.token(t, "2", true))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int64{}, body.Crews)
	s.flights.AssertExpectations(t)
}

func TestFlightHandler_Delete(t *testing.T) {
	s := newTestServer()
	s.flights.On("Delete", mock.Anything, int64(7)).Return(nil).Once()

	w := s.do(httptest.NewRequest(http.MethodDelete, "/api/airport/flights/7/", nil), s.token(t, "2", true))

	assert.Equal(t, http.StatusNoContent, w.Code)
	s.flights.AssertExpectations(t)
}
