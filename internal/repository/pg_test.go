package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway Postgres with all migrations applied.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "airport",
				"POSTGRES_PASSWORD": "airport",
				"POSTGRES_DB":       "airport",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	require.NoError(t, Migrate(fmt.Sprintf("pgx5://airport:airport@%s:%s/airport?sslmode=disable", host, port.Port())))

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://airport:airport@%s:%s/airport?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	source, destination domain.Airport
	route               domain.Route
	airplane            domain.Airplane
	crew                domain.Crew
	flight              domain.Flight
}

// seed creates one flight on a 2x3 airplane.
func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		source:      domain.Airport{Name: "Boryspil", ClosestBigCity: "Kyiv"},
		destination: domain.Airport{Name: "Heathrow", ClosestBigCity: "London"},
	}
	airports := NewAirportRepository(pool)
	require.NoError(t, airports.Create(ctx, &f.source))
	require.NoError(t, airports.Create(ctx, &f.destination))

	f.route = domain.Route{SourceID: f.source.ID, DestinationID: f.destination.ID, Distance: 2100}
	require.NoError(t, NewRouteRepository(pool).Create(ctx, &f.route))

	typ := domain.AirplaneType{Name: "Narrow body"}
	require.NoError(t, NewAirplaneTypeRepository(pool).Create(ctx, &typ))

	f.airplane = domain.Airplane{Name: "UR-PSA", Rows: 2, SeatsInRow: 3, AirplaneTypeID: typ.ID}
	require.NoError(t, NewAirplaneRepository(pool).Create(ctx, &f.airplane))

	f.crew = domain.Crew{FirstName: "Amelia", LastName: "Earhart"}
	require.NoError(t, NewCrewRepository(pool).Create(ctx, &f.crew))

	dep := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f.flight = domain.Flight{
		RouteID:       f.route.ID,
		AirplaneID:    f.airplane.ID,
		DepartureTime: dep,
		ArrivalTime:   dep.Add(3 * time.Hour),
		CrewIDs:       []int64{f.crew.ID},
	}
	require.NoError(t, NewFlightRepository(pool).Create(ctx, &f.flight))
	return f
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
