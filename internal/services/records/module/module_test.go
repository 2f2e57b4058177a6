package module

import (
	"context"
	"strings"
	"testing"

	"epimetrics/internal/modkit"
	"epimetrics/internal/platform/config"
	"epimetrics/internal/platform/store"
	"epimetrics/internal/platform/testkit"
	"epimetrics/internal/services/records/domain"
	"epimetrics/internal/services/records/repo"
	"epimetrics/internal/services/records/service"
)

type execLog struct{ sqls []string }

func (e *execLog) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	e.sqls = append(e.sqls, sql)
	return nil, nil
}
func (e *execLog) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (e *execLog) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (e *execLog) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	return fn(e)
}

func TestNewRequiresPostgres(t *testing.T) {
	testkit.MustPanic(t, func() { NewWithOptions(modkit.Deps{}, Options{}) })
}

func TestEnsureSchemaAndDryRun(t *testing.T) {
	pg := &execLog{}
	m := NewWithOptions(modkit.Deps{PG: pg}, Options{Chunk: 10, MirrorCH: true})
	if m.Name() != "records" {
		t.Fatalf("name = %s", m.Name())
	}
	if err := m.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(pg.sqls) != 4 || !strings.HasPrefix(pg.sqls[0], "create table if not exists records") {
		t.Fatalf("schema statements = %v", pg.sqls)
	}

	rep, err := m.Ports().Loader.Load(context.Background(),
		strings.NewReader(`{"dataset":"cases","location":"Cork","date":"2021-03-01","total":1}`),
		domain.LoadOptions{DryRun: true})
	if err != nil || rep.Records != 1 {
		t.Fatalf("dry run = %+v, %v", rep, err)
	}
	if len(pg.sqls) != 4 {
		t.Fatalf("dry run wrote to postgres")
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_LOADER_CHUNK", "50")
	t.Setenv("CORE_LOADER_MIRROR_CH", "false")
	o := FromConfig(config.New())
	if o.Chunk != 50 || o.MirrorCH || o.Retries != 3 {
		t.Fatalf("options = %+v", o)
	}
}

func TestChunkCappedAtBindLimit(t *testing.T) {
	t.Setenv("CORE_LOADER_CHUNK", "5000")
	if o := FromConfig(config.New()); o.Chunk != repo.MaxChunk {
		t.Fatalf("chunk = %d, want %d", o.Chunk, repo.MaxChunk)
	}

	m := NewWithOptions(modkit.Deps{PG: &execLog{}}, Options{Chunk: 100000})
	svc, ok := m.Ports().Loader.(*service.Service)
	if !ok {
		t.Fatalf("loader is %T", m.Ports().Loader)
	}
	if svc.Cfg.Chunk != repo.MaxChunk {
		t.Fatalf("service chunk = %d, want %d", svc.Cfg.Chunk, repo.MaxChunk)
	}
}
