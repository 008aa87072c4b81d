package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository interface {
	Create(ctx context.Context, airport *domain.Airport) error
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	List(ctx context.Context, filter domain.AirportFilter) (domain.List[domain.Airport], error)
	SetImage(ctx context.Context, id int64, path string) error
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) Create(ctx context.Context, a *domain.Airport) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO airports (name, closest_big_city) VALUES ($1, $2) RETURNING id`,
		a.Name, a.ClosestBigCity).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create airport: %w", translateConstraint(err))
	}
	return nil
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	var a domain.Airport
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, name, closest_big_city, image FROM airports WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.ClosestBigCity, &a.Image)
	if err != nil {
		return nil, notFound(err, "airport")
	}
	return &a, nil
}

func (r *PGAirportRepository) List(ctx context.Context, filter domain.AirportFilter) (domain.List[domain.Airport], error) {
	var w where
	if filter.Name != "" {
		w.add("name ILIKE $%d", containsPattern(filter.Name))
	}

	out := domain.List[domain.Airport]{Items: make([]domain.Airport, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM airports`+w.String(), w.args...).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count airports: %w", err)
	}

	limit, args := w.page(filter.Page)
	rows, err := q.Query(ctx, `SELECT id, name, closest_big_city, image FROM airports`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list airports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.ID, &a.Name, &a.ClosestBigCity, &a.Image); err != nil {
			return out, err
		}
		out.Items = append(out.Items, a)
	}
	return out, rows.Err()
}

func (r *PGAirportRepository) SetImage(ctx context.Context, id int64, path string) error {
	res, err := conn(ctx, r.db).Exec(ctx, `UPDATE airports SET image=$1 WHERE id=$2`, path, id)
	if err != nil {
		return fmt.Errorf("set airport image: %w", err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("airport %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ AirportRepository = (*PGAirportRepository)(nil)
