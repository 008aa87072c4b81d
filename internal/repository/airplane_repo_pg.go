package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirplaneTypeRepository interface {
	Create(ctx context.Context, t *domain.AirplaneType) error
	GetByID(ctx context.Context, id int64) (*domain.AirplaneType, error)
	List(ctx context.Context, filter domain.AirplaneTypeFilter) (domain.List[domain.AirplaneType], error)
	SetImage(ctx context.Context, id int64, path string) error
}

type AirplaneRepository interface {
	Create(ctx context.Context, a *domain.Airplane) error
	List(ctx context.Context, filter domain.AirplaneFilter) (domain.List[domain.Airplane], error)
}

type PGAirplaneTypeRepository struct {
	db *pgxpool.Pool
}

func NewAirplaneTypeRepository(db *pgxpool.Pool) AirplaneTypeRepository {
	return &PGAirplaneTypeRepository{db: db}
}

func (r *PGAirplaneTypeRepository) Create(ctx context.Context, t *domain.AirplaneType) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO airplane_types (name) VALUES ($1) RETURNING id`, t.Name).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create airplane type: %w", translateConstraint(err))
	}
	return nil
}

func (r *PGAirplaneTypeRepository) GetByID(ctx context.Context, id int64) (*domain.AirplaneType, error) {
	var t domain.AirplaneType
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, name, image FROM airplane_types WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Image)
	if err != nil {
		return nil, notFound(err, "airplane type")
	}
	return &t, nil
}

func (r *PGAirplaneTypeRepository) List(ctx context.Context, filter domain.AirplaneTypeFilter) (domain.List[domain.AirplaneType], error) {
	var w where
	if filter.Name != "" {
		w.add("name ILIKE $%d", containsPattern(filter.Name))
	}

	out := domain.List[domain.AirplaneType]{Items: make([]domain.AirplaneType, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM airplane_types`+w.String(), w.args...).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count airplane types: %w", err)
	}

	limit, args := w.page(filter.Page)
	rows, err := q.Query(ctx, `SELECT id, name, image FROM airplane_types`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list airplane types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.AirplaneType
		if err := rows.Scan(&t.ID, &t.Name, &t.Image); err != nil {
			return out, err
		}
		out.Items = append(out.Items, t)
	}
	return out, rows.Err()
}

func (r *PGAirplaneTypeRepository) SetImage(ctx context.Context, id int64, path string) error {
	res, err := conn(ctx, r.db).Exec(ctx, `UPDATE airplane_types SET image=$1 WHERE id=$2`, path, id)
	if err != nil {
		return fmt.Errorf("set airplane type image: %w", err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("airplane type %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

type PGAirplaneRepository struct {
	db *pgxpool.Pool
}

func NewAirplaneRepository(db *pgxpool.Pool) AirplaneRepository {
	return &PGAirplaneRepository{db: db}
}

func (r *PGAirplaneRepository) Create(ctx context.Context, a *domain.Airplane) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO airplanes (name, rows, seats_in_row, airplane_type_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, airplane_type_id
		)
		SELECT i.id, t.name FROM inserted i JOIN airplane_types t ON t.id = i.airplane_type_id`,
		a.Name, a.Rows, a.SeatsInRow, a.AirplaneTypeID).Scan(&a.ID, &a.AirplaneType)
	if err != nil {
		return fmt.Errorf("create airplane: %w", translateConstraint(err))
	}
	return nil
}

func (r *PGAirplaneRepository) List(ctx context.Context, filter domain.AirplaneFilter) (domain.List[domain.Airplane], error) {
	var w where
	if filter.AirplaneTypeID != 0 {
		w.add("a.airplane_type_id = $%d", filter.AirplaneTypeID)
	}
	if filter.Name != "" {
		w.add("a.name ILIKE $%d", containsPattern(filter.Name))
	}

	out := domain.List[domain.Airplane]{Items: make([]domain.Airplane, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM airplanes a`+w.String(), w.args...).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count airplanes: %w", err)
	}

	limit, args := w.page(filter.Page)
	rows, err := q.Query(ctx, `
		SELECT a.id, a.name, a.rows, a.seats_in_row, a.airplane_type_id, t.name
		FROM airplanes a JOIN airplane_types t ON t.id = a.airplane_type_id`+w.String()+` ORDER BY a.id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list airplanes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Airplane
		if err := rows.Scan(&a.ID, &a.Name, &a.Rows, &a.SeatsInRow, &a.AirplaneTypeID, &a.AirplaneType); err != nil {
			return out, err
		}
		out.Items = append(out.Items, a)
	}
	return out, rows.Err()
}

var (
	_ AirplaneTypeRepository = (*PGAirplaneTypeRepository)(nil)
	_ AirplaneRepository     = (*PGAirplaneRepository)(nil)
)
