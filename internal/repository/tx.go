package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// conn returns the transaction bound to ctx, or the pool.
func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error, constraint string) bool {
	code, name := pgErrorCode(err)
	return code == codeUniqueViolation && name == constraint
}

type fieldMessage struct {
	field   string
	message string
}

// constraintErrors turns storage constraint failures into the messages API callers see.
var constraintErrors = map[string]fieldMessage{
	"airports_name_key":               {"name", "airport with this name already exists."},
	"airplane_types_name_key":         {"name", "airplane type with this name already exists."},
	"airplanes_name_key":              {"name", "airplane with this name already exists."},
	"airplanes_airplane_type_id_fkey": {"airplane_type", "Invalid pk - object does not exist."},
	"airplanes_rows_check":            {"rows", "Ensure this value is greater than or equal to 1."},
	"airplanes_seats_in_row_check":    {"seats_in_row", "Ensure this value is greater than or equal to 1."},
	"routes_source_destination_key":   {"non_field_errors", "The fields source, destination must make a unique set."},
	"routes_distinct_endpoints":       {"non_field_errors", "Source and destination airports must differ."},
	"routes_distance_check":           {"distance", "Ensure this value is greater than or equal to 1."},
	"routes_source_id_fkey":           {"source", "Invalid pk - object does not exist."},
	"routes_destination_id_fkey":      {"destination", "Invalid pk - object does not exist."},
	"flights_route_id_fkey":           {"route", "Invalid pk - object does not exist."},
	"flights_airplane_id_fkey":        {"airplane", "Invalid pk - object does not exist."},
	"flights_arrival_after_departure": {"non_field_errors", "Arrival time must be after departure time."},
	"flight_crews_crew_id_fkey":       {"crews", "Invalid pk - object does not exist."},
}

func translateConstraint(err error) error {
	code, name := pgErrorCode(err)
	switch code {
	case codeUniqueViolation, codeForeignKeyViolation, codeCheckViolation:
		if fm, ok := constraintErrors[name]; ok {
			return domain.NewValidationError(fm.field, fm.message)
		}
	}
	return err
}

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	clauses []string
	args    []any
}

// add appends clause, which references the new argument as %d.
func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the args to pass.
func (w *where) page(p domain.Page) (string, []any) {
	args := append(append([]any{}, w.args...), p.Limit(), p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}
