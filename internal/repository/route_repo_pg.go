package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepository interface {
	Create(ctx context.Context, route *domain.Route) error
	List(ctx context.Context, filter domain.RouteFilter) (domain.List[domain.Route], error)
}

type PGRouteRepository struct {
	db *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) RouteRepository {
	return &PGRouteRepository{db: db}
}

// Create relies on routes_source_destination_key for pair uniqueness; (B,A) is a different pair than (A,B).
func (r *PGRouteRepository) Create(ctx context.Context, route *domain.Route) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO routes (source_id, destination_id, distance) VALUES ($1, $2, $3) RETURNING id`,
		route.SourceID, route.DestinationID, route.Distance).Scan(&route.ID)
	if err != nil {
		return fmt.Errorf("create route: %w", translateConstraint(err))
	}
	return nil
}

func (r *PGRouteRepository) List(ctx context.Context, filter domain.RouteFilter) (domain.List[domain.Route], error) {
	var w where
	if filter.SourceID != 0 {
		w.add("r.source_id = $%d", filter.SourceID)
	}
	if filter.DestinationID != 0 {
		w.add("r.destination_id = $%d", filter.DestinationID)
	}

	out := domain.List[domain.Route]{Items: make([]domain.Route, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM routes r`+w.String(), w.args...).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count routes: %w", err)
	}

	limit, args := w.page(filter.Page)
	rows, err := q.Query(ctx, `
		SELECT r.id, r.source_id, r.destination_id, r.distance, s.name, d.name
		FROM routes r
		JOIN airports s ON s.id = r.source_id
		JOIN airports d ON d.id = r.destination_id`+w.String()+` ORDER BY r.id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.SourceID, &rt.DestinationID, &rt.Distance, &rt.SourceName, &rt.DestinationName); err != nil {
			return out, err
		}
		out.Items = append(out.Items, rt)
	}
	return out, rows.Err()
}

var _ RouteRepository = (*PGRouteRepository)(nil)
