//go:build integration_pg

package module

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"epimetrics/internal/modkit"
	"epimetrics/internal/platform/store"
	seriesrepo "epimetrics/internal/services/api/series/repo"
	"epimetrics/internal/services/records/domain"
)

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

const file = `{"kind":"survey","id":"vax","title":"Intent","question":"Will you?","answers":["yes","no"]}
{"dataset":"cases","location":"Cork","date":"2021-03-01","total":3,"gender":"F","policy":"level 5","source":"HSE","source_date":"2021-03-04"}
{"dataset":"cases","location":"Cork","date":"2021-03-01","total":2,"gender":"M"}
{"dataset":"cases","location":"Cork","date":"2021-03-03","total":4,"gender":"F"}
`

func TestLoadThenAggregate_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{AppName: "epimetrics-it", PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = st.Close(ctx) }()

	m := NewWithOptions(modkit.Deps{PG: st.PG}, Options{Chunk: 2, Retries: 2})
	if err := m.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	rep, err := m.Ports().Loader.Load(ctx, strings.NewReader(file), domain.LoadOptions{})
	if err != nil || rep.Inserted != 3 || rep.Surveys != 1 {
		t.Fatalf("Load = %+v, %v", rep, err)
	}

	r := seriesrepo.NewPG().Bind(st.PG)
	f := seriesrepo.Filter{}.Where("dataset", seriesrepo.OpEq, "cases").Where("gender", seriesrepo.OpPresent)
	rows, err := r.Aggregate(ctx, seriesrepo.AggQuery{Filter: f, GroupBy: "gender", Labels: []string{"policy"}})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 3 || rows[0].SplitKey != "F" || rows[0].Total != 3 || rows[0].Labels["policy"] != "level 5" {
		t.Fatalf("rows = %+v", rows)
	}

	srcs, err := r.Sources(ctx, seriesrepo.Filter{}.Where("dataset", seriesrepo.OpEq, "cases"))
	if err != nil || len(srcs) != 1 || srcs[0].Name != "HSE" {
		t.Fatalf("sources = %+v, %v", srcs, err)
	}

	sv, err := r.Survey(ctx, "vax")
	if err != nil || strings.Join(sv.Answers, ",") != "yes,no" {
		t.Fatalf("survey = %+v, %v", sv, err)
	}
}
