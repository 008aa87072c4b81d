package flights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context, filter domain.FlightFilter) (domain.List[domain.FlightSummary], error)
	Get(ctx context.Context, id int64) (*domain.FlightDetail, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, id int64, patch Patch) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
}

// Patch carries the fields of an update; nil fields keep their value.
type Patch struct {
	RouteID       *int64
	AirplaneID    *int64
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	CrewIDs       *[]int64
}

func (p Patch) apply(f *domain.Flight) {
	if p.RouteID != nil {
		f.RouteID = *p.RouteID
	}
	if p.AirplaneID != nil {
		f.AirplaneID = *p.AirplaneID
	}
	if p.DepartureTime != nil {
		f.DepartureTime = *p.DepartureTime
	}
	if p.ArrivalTime != nil {
		f.ArrivalTime = *p.ArrivalTime
	}
	if p.CrewIDs != nil {
		f.CrewIDs = *p.CrewIDs
	}
}

// FlightService reads flights straight from storage. Nothing here is cached.
type FlightService struct {
	repo repository.FlightRepository
	log  *logger.Logger
}

func NewFlightService(repo repository.FlightRepository, log *logger.Logger) *FlightService {
	return &FlightService{repo: repo, log: log}
}

func (s *FlightService) List(ctx context.Context, filter domain.FlightFilter) (domain.List[domain.FlightSummary], error) {
	return s.repo.List(ctx, filter)
}

func (s *FlightService) Get(ctx context.Context, id int64) (*domain.FlightDetail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, flight *domain.Flight) error {
	if err := flight.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return err
	}
	s.log.Infof("flights", "created flight %d on route %d", flight.ID, flight.RouteID)
	return nil
}

func (s *FlightService) Update(ctx context.Context, id int64, patch Patch) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	moved := patch.AirplaneID != nil && *patch.AirplaneID != flight.AirplaneID
	patch.apply(flight)
	if err := flight.Validate(); err != nil {
		return nil, err
	}
	if moved {
		if err := s.checkSeatsFit(ctx, flight); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, flight); err != nil {
		return nil, err
	}
	s.log.Infof("flights", "updated flight %d", id)
	return flight, nil
}

// checkSeatsFit rejects an airplane that has no room for seats already sold.
// The repository repeats the check under a row lock.
func (s *FlightService) checkSeatsFit(ctx context.Context, flight *domain.Flight) error {
	layout, err := s.repo.AirplaneLayout(ctx, flight.AirplaneID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError("airplane", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", flight.AirplaneID))
	}
	if err != nil {
		return err
	}
	sold, err := s.repo.TakenSeats(ctx, flight.ID)
	if err != nil {
		return err
	}
	return domain.SeatsFit(sold, layout)
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	s.log.Infof("flights", "deleted flight %d", id)
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
