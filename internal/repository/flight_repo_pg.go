package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context, filter domain.FlightFilter) (domain.List[domain.FlightSummary], error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetDetail(ctx context.Context, id int64) (*domain.FlightDetail, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	Layout(ctx context.Context, flightID int64) (domain.SeatLayout, error)
	AirplaneLayout(ctx context.Context, airplaneID int64) (domain.SeatLayout, error)
	TakenSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

// availableExpr is computed on every read; sold seats are never cached.
const availableExpr = `a.rows * a.seats_in_row - (SELECT COUNT(*) FROM tickets t WHERE t.flight_id = f.id)`

func flightWhere(filter domain.FlightFilter) *where {
	w := &where{}
	if filter.RouteID != 0 {
		w.add("f.route_id = $%d", filter.RouteID)
	}
	if filter.AirplaneID != 0 {
		w.add("f.airplane_id = $%d", filter.AirplaneID)
	}
	if filter.Date != nil {
		w.add("f.departure_time >= $%d", *filter.Date)
		w.add("f.departure_time < $%d", filter.Date.AddDate(0, 0, 1))
	}
	if len(filter.CrewIDs) > 0 {
		w.add("f.id IN (SELECT fc.flight_id FROM flight_crews fc WHERE fc.crew_id = ANY($%d))", filter.CrewIDs)
	}
	return w
}

func (r *PGFlightRepository) List(ctx context.Context, filter domain.FlightFilter) (domain.List[domain.FlightSummary], error) {
	w := flightWhere(filter)

	out := domain.List[domain.FlightSummary]{Items: make([]domain.FlightSummary, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM flights f`+w.String(), w.args...).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count flights: %w", err)
	}

	limit, args := w.page(filter.Page)
	rows, err := q.Query(ctx, `
		SELECT f.id, f.departure_time, f.arrival_time, s.name, d.name,
		       a.rows * a.seats_in_row, `+availableExpr+`
		FROM flights f
		JOIN routes r ON r.id = f.route_id
		JOIN airports s ON s.id = r.source_id
		JOIN airports d ON d.id = r.destination_id
		JOIN airplanes a ON a.id = f.airplane_id`+w.String()+`
		ORDER BY f.departure_time DESC, f.id DESC`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.FlightSummary
		if err := rows.Scan(&f.ID, &f.DepartureTime, &f.ArrivalTime, &f.SourceName, &f.DestinationName,
			&f.AirplaneCapacity, &f.TicketsAvailable); err != nil {
			return out, err
		}
		out.Items = append(out.Items, f)
	}
	return out, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	q := conn(ctx, r.db)
	var f domain.Flight
	err := q.QueryRow(ctx, `SELECT id, route_id, airplane_id, departure_time, arrival_time FROM flights WHERE id=$1`, id).
		Scan(&f.ID, &f.RouteID, &f.AirplaneID, &f.DepartureTime, &f.ArrivalTime)
	if err != nil {
		return nil, notFound(err, "flight")
	}

	rows, err := q.Query(ctx, `SELECT crew_id FROM flight_crews WHERE flight_id=$1 ORDER BY crew_id`, id)
	if err != nil {
		return nil, fmt.Errorf("flight crews: %w", err)
	}
	f.CrewIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("flight crews: %w", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) GetDetail(ctx context.Context, id int64) (*domain.FlightDetail, error) {
	q := conn(ctx, r.db)
	var d domain.FlightDetail
	err := q.QueryRow(ctx, `
		SELECT f.id, f.departure_time, f.arrival_time,
		       r.id, r.source_id, r.destination_id, r.distance, s.name, dst.name,
		       a.id, a.name, a.rows, a.seats_in_row, a.airplane_type_id, t.name,
		       `+availableExpr+`
		FROM flights f
		JOIN routes r ON r.id = f.route_id
		JOIN airports s ON s.id = r.source_id
		JOIN airports dst ON dst.id = r.destination_id
		JOIN airplanes a ON a.id = f.airplane_id
		JOIN airplane_types t ON t.id = a.airplane_type_id
		WHERE f.id = $1`, id).
		Scan(&d.ID, &d.DepartureTime, &d.ArrivalTime,
			&d.Route.ID, &d.Route.SourceID, &d.Route.DestinationID, &d.Route.Distance, &d.Route.SourceName, &d.Route.DestinationName,
			&d.Airplane.ID, &d.Airplane.Name, &d.Airplane.Rows, &d.Airplane.SeatsInRow, &d.Airplane.AirplaneTypeID, &d.Airplane.AirplaneType,
			&d.TicketsAvailable)
	if err != nil {
		return nil, notFound(err, "flight")
	}

	if d.TakenPlaces, err = r.TakenSeats(ctx, id); err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT c.id, c.first_name, c.last_name
		FROM crews c JOIN flight_crews fc ON fc.crew_id = c.id
		WHERE fc.flight_id = $1 ORDER BY c.id`, id)
	if err != nil {
		return nil, fmt.Errorf("flight crews: %w", err)
	}
	d.Crews, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Crew, error) {
		var c domain.Crew
		err := row.Scan(&c.ID, &c.FirstName, &c.LastName)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("flight crews: %w", err)
	}
	return &d, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		err := conn(ctx, r.db).QueryRow(ctx, `
			INSERT INTO flights (route_id, airplane_id, departure_time, arrival_time)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			f.RouteID, f.AirplaneID, f.DepartureTime, f.ArrivalTime).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("create flight: %w", translateConstraint(err))
		}
		return r.setCrew(ctx, f.ID, f.CrewIDs)
	})
}

// Update locks the flight row, so bookings holding FOR SHARE on it finish
// first. Changing the airplane is rejected when a sold seat would fall
// outside the new layout.
func (r *PGFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		var airplaneID int64
		err := conn(ctx, r.db).QueryRow(ctx, `SELECT airplane_id FROM flights WHERE id=$1 FOR UPDATE`, f.ID).Scan(&airplaneID)
		if err != nil {
			return notFound(err, "flight")
		}
		if airplaneID != f.AirplaneID {
			if err := r.checkSeatsFit(ctx, f.ID, f.AirplaneID); err != nil {
				return err
			}
		}

		res, err := conn(ctx, r.db).Exec(ctx, `
			UPDATE flights SET route_id=$1, airplane_id=$2, departure_time=$3, arrival_time=$4
			WHERE id=$5`,
			f.RouteID, f.AirplaneID, f.DepartureTime, f.ArrivalTime, f.ID)
		if err != nil {
			return fmt.Errorf("update flight: %w", translateConstraint(err))
		}
		if res.RowsAffected() == 0 {
			return fmt.Errorf("flight %d: %w", f.ID, domain.ErrNotFound)
		}
		return r.setCrew(ctx, f.ID, f.CrewIDs)
	})
}

func (r *PGFlightRepository) checkSeatsFit(ctx context.Context, flightID, airplaneID int64) error {
	layout, err := r.AirplaneLayout(ctx, airplaneID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError("airplane", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", airplaneID))
	}
	if err != nil {
		return err
	}
	sold, err := r.TakenSeats(ctx, flightID)
	if err != nil {
		return err
	}
	return domain.SeatsFit(sold, layout)
}

func (r *PGFlightRepository) setCrew(ctx context.Context, flightID int64, crewIDs []int64) error {
	q := conn(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM flight_crews WHERE flight_id=$1`, flightID); err != nil {
		return fmt.Errorf("reset flight crew: %w", err)
	}
	if len(crewIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO flight_crews (flight_id, crew_id)
		SELECT $1, c FROM unnest($2::bigint[]) AS c ON CONFLICT DO NOTHING`, flightID, crewIDs)
	if err != nil {
		return fmt.Errorf("set flight crew: %w", translateConstraint(err))
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PGFlightRepository) Layout(ctx context.Context, flightID int64) (domain.SeatLayout, error) {
	var l domain.SeatLayout
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT a.rows, a.seats_in_row FROM flights f JOIN airplanes a ON a.id = f.airplane_id WHERE f.id=$1`, flightID).
		Scan(&l.Rows, &l.SeatsInRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
		}
		return l, fmt.Errorf("flight layout: %w", err)
	}
	return l, nil
}

func (r *PGFlightRepository) AirplaneLayout(ctx context.Context, airplaneID int64) (domain.SeatLayout, error) {
	var l domain.SeatLayout
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT rows, seats_in_row FROM airplanes WHERE id=$1`, airplaneID).
		Scan(&l.Rows, &l.SeatsInRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, fmt.Errorf("airplane %d: %w", airplaneID, domain.ErrNotFound)
		}
		return l, fmt.Errorf("airplane layout: %w", err)
	}
	return l, nil
}

func (r *PGFlightRepository) TakenSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT row_number, seat_number FROM tickets WHERE flight_id=$1 ORDER BY row_number, seat_number`, flightID)
	if err != nil {
		return nil, fmt.Errorf("taken seats: %w", err)
	}
	seats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Seat, error) {
		var s domain.Seat
		err := row.Scan(&s.Row, &s.Seat)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("taken seats: %w", err)
	}
	return seats, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
