//go:build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres boots a throwaway postgres; first image pull can be slow
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "epimetrics",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/epimetrics?sslmode=disable", host, mapped.Port())
}

func TestPGAdapter_TxAndQueries_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{AppName: "epimetrics-it", PG: PGConfig{Enabled: true, URL: dsn, MaxConns: 4, LogSQL: true}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close(ctx) }()

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if _, err := s.PG.Exec(ctx, `CREATE TABLE daily (date date, total double precision)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		for i := 1; i <= 3; i++ {
			if _, err := q.Exec(ctx, `INSERT INTO daily VALUES ($1, $2)`, time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC), float64(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}

	rollback := errors.New("rollback")
	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO daily VALUES ('2024-01-09', 100)`); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	sum, err := Scalar[float64](ctx, s.PG, `SELECT sum(total) FROM daily`)
	if err != nil || sum != 6 {
		t.Fatalf("sum = %v, %v", sum, err)
	}

	totals, err := Many(ctx, s.PG, func(r Row) (float64, error) {
		var v float64
		return v, r.Scan(&v)
	}, `SELECT total FROM daily WHERE date >= $1 ORDER BY date`, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil || len(totals) != 2 || totals[0] != 2 {
		t.Fatalf("Many = %v, %v", totals, err)
	}
}
