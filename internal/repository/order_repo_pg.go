package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	// CreateWithTickets stores the order and all of its tickets or nothing.
	CreateWithTickets(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, filter domain.OrderFilter) (domain.List[domain.Order], error)
	GetForUser(ctx context.Context, id int64, userID string) (*domain.Order, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

const takenSeatMessage = "The fields flight, row, seat must make a unique set."

func (r *PGOrderRepository) CreateWithTickets(ctx context.Context, order *domain.Order) error {
	if len(order.Tickets) == 0 {
		return domain.NewValidationError("tickets", "This list may not be empty.")
	}

	return withTx(ctx, r.db, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if err := q.QueryRow(ctx, `INSERT INTO orders (user_id) VALUES ($1) RETURNING id, created_at`, order.UserID).
			Scan(&order.ID, &order.CreatedAt); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		n := len(order.Tickets)
		layouts := make(map[int64]domain.SeatLayout)
		for _, i := range insertOrder(order.Tickets) {
			t := &order.Tickets[i]

			layout, ok := layouts[t.FlightID]
			if !ok {
				err := q.QueryRow(ctx, `
					SELECT a.rows, a.seats_in_row
					FROM flights f JOIN airplanes a ON a.id = f.airplane_id
					WHERE f.id = $1 FOR SHARE OF f`, t.FlightID).Scan(&layout.Rows, &layout.SeatsInRow)
				if errors.Is(err, pgx.ErrNoRows) {
					return domain.TicketError(n, i, "flight", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", t.FlightID))
				}
				if err != nil {
					return fmt.Errorf("flight layout: %w", err)
				}
				layouts[t.FlightID] = layout
			}

			if err := t.Validate(layout); err != nil {
				var rangeErr *domain.SeatRangeError
				if errors.As(err, &rangeErr) {
					return domain.TicketError(n, i, rangeErr.Field, rangeErr.Message)
				}
				return err
			}

			t.OrderID = order.ID
			err := q.QueryRow(ctx, `
				INSERT INTO tickets (row_number, seat_number, order_id, flight_id)
				VALUES ($1, $2, $3, $4) RETURNING id`, t.Row, t.Seat, t.OrderID, t.FlightID).Scan(&t.ID)
			if err != nil {
				if isUniqueViolation(err, "tickets_flight_row_seat_key") {
					return domain.TicketError(n, i, "non_field_errors", takenSeatMessage)
				}
				return fmt.Errorf("create ticket: %w", err)
			}
		}
		return nil
	})
}

// insertOrder returns ticket indexes sorted by (flight, row, seat). Every
// transaction takes seat locks in this order, so two orders over the same
// seats conflict on a unique violation instead of deadlocking.
func insertOrder(tickets []domain.Ticket) []int {
	idx := make([]int, len(tickets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := tickets[idx[a]], tickets[idx[b]]
		if ta.FlightID != tb.FlightID {
			return ta.FlightID < tb.FlightID
		}
		if ta.Row != tb.Row {
			return ta.Row < tb.Row
		}
		return ta.Seat < tb.Seat
	})
	return idx
}

func (r *PGOrderRepository) ListByUser(ctx context.Context, filter domain.OrderFilter) (domain.List[domain.Order], error) {
	out := domain.List[domain.Order]{Items: make([]domain.Order, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id=$1`, filter.UserID).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count orders: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, user_id, created_at FROM orders WHERE user_id=$1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		filter.UserID, filter.Page.Limit(), filter.Page.Offset())
	if err != nil {
		return out, fmt.Errorf("list orders: %w", err)
	}
	out.Items, err = pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return out, fmt.Errorf("list orders: %w", err)
	}

	if err := r.attachTickets(ctx, out.Items); err != nil {
		return out, err
	}
	return out, nil
}

func (r *PGOrderRepository) GetForUser(ctx context.Context, id int64, userID string) (*domain.Order, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, user_id, created_at FROM orders WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, notFound(err, "order")
	}

	orders := []domain.Order{o}
	if err := r.attachTickets(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func scanOrder(row pgx.CollectableRow) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.CreatedAt)
	return o, err
}

func (r *PGOrderRepository) attachTickets(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT t.id, t.order_id, t.flight_id, t.row_number, t.seat_number,
		       f.route_id, f.airplane_id, f.departure_time, f.arrival_time
		FROM tickets t JOIN flights f ON f.id = t.flight_id
		WHERE t.order_id = ANY($1)
		ORDER BY t.row_number, t.seat_number, t.id`, ids)
	if err != nil {
		return fmt.Errorf("order tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Ticket
		f := &domain.Flight{}
		if err := rows.Scan(&t.ID, &t.OrderID, &t.FlightID, &t.Row, &t.Seat,
			&f.RouteID, &f.AirplaneID, &f.DepartureTime, &f.ArrivalTime); err != nil {
			return err
		}
		f.ID = t.FlightID
		t.Flight = f
		o := &orders[index[t.OrderID]]
		o.Tickets = append(o.Tickets, t)
	}
	return rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)
