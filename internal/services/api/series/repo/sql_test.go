package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	perr "epimetrics/internal/platform/errors"
	"epimetrics/internal/platform/store"
	"epimetrics/internal/platform/testkit"
)

type fakeRows struct {
	data [][]any
	i    int
}

func (f *fakeRows) Next() bool { f.i++; return f.i <= len(f.data) }
func (f *fakeRows) Scan(dst ...any) error {
	row := f.data[f.i-1]
	if len(dst) != len(row) {
		return errors.New("column count mismatch")
	}
	for k, d := range dst {
		switch p := d.(type) {
		case *string:
			*p = row[k].(string)
		case *float64:
			*p = row[k].(float64)
		case *[]string:
			*p = row[k].([]string)
		}
	}
	return nil
}
func (f *fakeRows) Err() error        { return nil }
func (f *fakeRows) Close()            {}
func (f *fakeRows) Columns() []string { return nil }

// recorder captures the last statement and replays canned rows
type recorder struct {
	rows [][]any
	err  error
	sql  string
	args []any
}

func (r *recorder) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	r.sql, r.args = sql, args
	if r.err != nil {
		return nil, r.err
	}
	return &fakeRows{data: r.rows}, nil
}

func TestAggregatePostgres(t *testing.T) {
	rec := &recorder{rows: [][]any{
		{"2021-01-01", "F", 3.0, "lockdown"},
		{"2021-01-01", "M", 2.0, ""},
		{"2021-01-03", "F", 1.0, "open"},
	}}
	r := &queries{q: rec, dialect: Postgres}
	f := Filter{}.Where("dataset", OpEq, "cases").Where("gender", OpPresent)

	got, err := r.Aggregate(context.Background(), AggQuery{Filter: f, GroupBy: "gender", Labels: []string{"policy"}})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d", len(got))
	}
	if !got[0].Date.Equal(testkit.Day(t, "2021-01-01")) || got[0].SplitKey != "F" || got[0].Total != 3 {
		t.Fatalf("row0 = %+v", got[0])
	}
	if got[0].Labels["policy"] != "lockdown" || got[1].Labels != nil {
		t.Fatalf("labels = %v / %v", got[0].Labels, got[1].Labels)
	}

	testkit.MustContain(t, rec.sql, "sum(total)::float8")
	testkit.MustContain(t, rec.sql, "coalesce(gender::text, '')")
	testkit.MustContain(t, rec.sql, "(array_agg(policy::text order by created_at, id))[1]")
	testkit.MustContain(t, rec.sql, "group by date, gender")
	testkit.MustContain(t, rec.sql, "where dataset = $1 AND coalesce(gender, '') <> ''")
	if len(rec.args) != 1 || rec.args[0] != "cases" {
		t.Fatalf("args = %v", rec.args)
	}
}

func TestAggregateClickHouseTotalsOnly(t *testing.T) {
	rec := &recorder{rows: [][]any{{"2021-02-01", "", 7.0}}}
	r := NewCH(chStub{rec})
	if r.Backend() != BackendCH {
		t.Fatalf("backend = %s", r.Backend())
	}

	got, err := r.Aggregate(context.Background(), AggQuery{Filter: Filter{}.Where("dataset", OpEq, "deaths")})
	if err != nil || len(got) != 1 || got[0].Total != 7 || got[0].SplitKey != "" {
		t.Fatalf("Aggregate = %+v, %v", got, err)
	}
	testkit.MustContain(t, rec.sql, "toFloat64(sum(total))")
	testkit.MustContain(t, rec.sql, "toString(date)")
	testkit.MustContain(t, rec.sql, "where dataset = ?")
	if strings.Contains(rec.sql, "$1") {
		t.Fatalf("clickhouse must not use numbered placeholders: %s", rec.sql)
	}
}

func TestAggregateErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	r := &queries{q: &recorder{err: boom}, dialect: Postgres}
	_, err := r.Aggregate(context.Background(), AggQuery{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestSourcesAndSurvey(t *testing.T) {
	rec := &recorder{rows: [][]any{{"hse", "2021-03-01"}, {"who", "2021-02-11"}}}
	r := &queries{q: rec, dialect: Postgres}

	src, err := r.Sources(context.Background(), Filter{}.Where("dataset", OpEq, "cases"))
	if err != nil || len(src) != 2 || src[0].Name != "hse" || !src[0].Date.Equal(testkit.Day(t, "2021-03-01")) {
		t.Fatalf("Sources = %+v, %v", src, err)
	}
	testkit.MustContain(t, rec.sql, "coalesce(source, '') <> ''")
	testkit.MustContain(t, rec.sql, "max(source_date)::text")

	rec.rows = [][]any{{"vax", "Vaccines", "Will you get vaccinated?", []string{"yes", "no"}}}
	s, err := r.Survey(context.Background(), "vax")
	if err != nil || s.Title != "Vaccines" || len(s.Answers) != 2 {
		t.Fatalf("Survey = %+v, %v", s, err)
	}
	testkit.MustContain(t, rec.sql, "where id = $1")

	rec.rows = nil
	if _, err := r.Survey(context.Background(), "nope"); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("missing survey = %v", err)
	}
}

func TestNewCHPanicsOnNil(t *testing.T) {
	testkit.MustPanic(t, func() { NewCH(nil) })
}

// chStub satisfies the clickhouse seam over a recorder
type chStub struct{ *recorder }

func (chStub) Insert(context.Context, string, [][]any) error { return nil }
func (chStub) Ping(context.Context) error                    { return nil }
func (chStub) Close() error                                  { return nil }
