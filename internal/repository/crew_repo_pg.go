package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CrewRepository interface {
	Create(ctx context.Context, crew *domain.Crew) error
	List(ctx context.Context, filter domain.CrewFilter) (domain.List[domain.Crew], error)
}

type PGCrewRepository struct {
	db *pgxpool.Pool
}

func NewCrewRepository(db *pgxpool.Pool) CrewRepository {
	return &PGCrewRepository{db: db}
}

func (r *PGCrewRepository) Create(ctx context.Context, c *domain.Crew) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO crews (first_name, last_name) VALUES ($1, $2) RETURNING id`,
		c.FirstName, c.LastName).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("create crew: %w", err)
	}
	return nil
}

func (r *PGCrewRepository) List(ctx context.Context, filter domain.CrewFilter) (domain.List[domain.Crew], error) {
	var w where
	if filter.Name != "" {
		w.add("(first_name || ' ' || last_name) ILIKE $%d", containsPattern(filter.Name))
	}

	out := domain.List[domain.Crew]{Items: make([]domain.Crew, 0)}
	q := conn(ctx, r.db)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM crews`+w.String(), w.args...).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count crews: %w", err)
	}

	limit, args := w.page(filter.Page)
	rows, err := q.Query(ctx, `SELECT id, first_name, last_name FROM crews`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list crews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Crew
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return out, err
		}
		out.Items = append(out.Items, c)
	}
	return out, rows.Err()
}

var _ CrewRepository = (*PGCrewRepository)(nil)
