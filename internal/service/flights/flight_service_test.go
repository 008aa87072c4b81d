package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context, filter domain.FlightFilter) (domain.List[domain.FlightSummary], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.List[domain.FlightSummary]), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetDetail(ctx context.Context, id int64) (*domain.FlightDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightDetail), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFlightRepository) Layout(ctx context.Context, flightID int64) (domain.SeatLayout, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(domain.SeatLayout), args.Error(1)
}

func (m *MockFlightRepository) AirplaneLayout(ctx context.Context, airplaneID int64) (domain.SeatLayout, error) {
	args := m.Called(ctx, airplaneID)
	return args.Get(0).(domain.SeatLayout), args.Error(1)
}

func (m *MockFlightRepository) TakenSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

var departure = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func TestFlightService_List(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, logger.Discard())
	ctx := context.Background()

	filter := domain.FlightFilter{RouteID: 2}
	want := domain.List[domain.FlightSummary]{Count: 1, Items: []domain.FlightSummary{{ID: 1, AirplaneCapacity: 60, TicketsAvailable: 58}}}
	repo.On("List", ctx, filter).Return(want, nil).Once()

	got, err := service.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestFlightService_Create(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		arrival time.Time
		wantErr bool
	}{
		{"arrival after departure", departure.Add(time.Hour), false},
		{"arrival equals departure", departure, true},
		{"arrival before departure", departure.Add(-time.Hour), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockFlightRepository{}
			service := NewFlightService(repo, logger.Discard())
			flight := &domain.Flight{RouteID: 1, AirplaneID: 1, DepartureTime: departure, ArrivalTime: tc.arrival}
			repo.On("Create", ctx, flight).Return(nil).Maybe()

			err := service.Create(ctx, flight)
			if tc.wantErr {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Contains(t, verr.Fields, "non_field_errors")
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestFlightService_Update(t *testing.T) {
	ctx := context.Background()
	current := func() *domain.Flight {
		return &domain.Flight{ID: 3, RouteID: 1, AirplaneID: 1, DepartureTime: departure, ArrivalTime: departure.Add(2 * time.Hour), CrewIDs: []int64{1}}
	}

	t.Run("partial", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := NewFlightService(repo, logger.Discard())
		repo.On("GetByID", ctx, int64(3)).Return(current(), nil).Once()
		repo.On("AirplaneLayout", ctx, int64(9)).Return(domain.SeatLayout{Rows: 10, SeatsInRow: 4}, nil).Once()
		repo.On("TakenSeats", ctx, int64(3)).Return([]domain.Seat{{Row: 10, Seat: 4}}, nil).Once()
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Flight")).Return(nil).Once()

		airplane := int64(9)
		crew := []int64{}
		updated, err := service.Update(ctx, 3, Patch{AirplaneID: &airplane, CrewIDs: &crew})

		require.NoError(t, err)
		assert.Equal(t, int64(9), updated.AirplaneID)
		assert.Equal(t, int64(1), updated.RouteID)
		assert.Empty(t, updated.CrewIDs)
		repo.AssertExpectations(t)
	})

	t.Run("airplane too small for sold seats", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := NewFlightService(repo, logger.Discard())
		repo.On("GetByID", ctx, int64(3)).Return(current(), nil).Once()
		repo.On("AirplaneLayout", ctx, int64(11)).Return(domain.SeatLayout{Rows: 1, SeatsInRow: 1}, nil).Once()
		repo.On("TakenSeats", ctx, int64(3)).Return([]domain.Seat{{Row: 30, Seat: 6}}, nil).Once()

		small := int64(11)
		_, err := service.Update(ctx, 3, Patch{AirplaneID: &small})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "airplane")
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown airplane", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := NewFlightService(repo, logger.Discard())
		repo.On("GetByID", ctx, int64(3)).Return(current(), nil).Once()
		repo.On("AirplaneLayout", ctx, int64(404)).Return(domain.SeatLayout{}, domain.ErrNotFound).Once()

		missing := int64(404)
		_, err := service.Update(ctx, 3, Patch{AirplaneID: &missing})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{`Invalid pk "404" - object does not exist.`}, verr.Fields["airplane"])
		repo.AssertNotCalled(t, "TakenSeats", mock.Anything, mock.Anything)
	})

	t.Run("same airplane skips seat check", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := NewFlightService(repo, logger.Discard())
		repo.On("GetByID", ctx, int64(3)).Return(current(), nil).Once()
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Flight")).Return(nil).Once()

		same := int64(1)
		_, err := service.Update(ctx, 3, Patch{AirplaneID: &same})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "TakenSeats", mock.Anything, mock.Anything)
	})

	t.Run("arrival moved before departure", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := NewFlightService(repo, logger.Discard())
		repo.On("GetByID", ctx, int64(3)).Return(current(), nil).Once()

		arrival := departure.Add(-time.Minute)
		_, err := service.Update(ctx, 3, Patch{ArrivalTime: &arrival})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := NewFlightService(repo, logger.Discard())
		repo.On("GetByID", ctx, int64(3)).Return(nil, domain.ErrNotFound).Once()

		_, err := service.Update(ctx, 3, Patch{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFlightService_Delete(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, logger.Discard())
	ctx := context.Background()

	repo.On("Delete", ctx, int64(3)).Return(nil).Once()
	repo.On("Delete", ctx, int64(4)).Return(domain.ErrNotFound).Once()

	assert.NoError(t, service.Delete(ctx, 3))
	assert.ErrorIs(t, service.Delete(ctx, 4), domain.ErrNotFound)
}
