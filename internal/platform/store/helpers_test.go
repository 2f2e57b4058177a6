package store

import (
	"context"
	"errors"
	"testing"

	perr "epimetrics/internal/platform/errors"
)

type memRows struct {
	data [][]any
	i    int
	err  error
}

func (m *memRows) Next() bool { m.i++; return m.i <= len(m.data) }
func (m *memRows) Scan(dst ...any) error {
	for k, d := range dst {
		switch p := d.(type) {
		case *string:
			*p = m.data[m.i-1][k].(string)
		case *int:
			*p = m.data[m.i-1][k].(int)
		}
	}
	return nil
}
func (m *memRows) Err() error        { return m.err }
func (m *memRows) Close()            {}
func (m *memRows) Columns() []string { return nil }

type memQuerier struct{ rows [][]any }

func (q memQuerier) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (q memQuerier) Query(context.Context, string, ...any) (Rows, error) {
	return &memRows{data: q.rows}, nil
}
func (q memQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	r, _ := q.Query(ctx, sql, args...)
	r.Next()
	return r
}

func scanName(r Row) (string, error) {
	var s string
	var n int
	err := r.Scan(&s, &n)
	return s, err
}

func TestManyAndOne(t *testing.T) {
	ctx := context.Background()
	q := memQuerier{rows: [][]any{{"cases", 1}, {"deaths", 2}}}

	got, err := Many(ctx, q, scanName, "select")
	if err != nil || len(got) != 2 || got[1] != "deaths" {
		t.Fatalf("Many = %v, %v", got, err)
	}

	if _, err := One(ctx, q, scanName, "select"); err == nil {
		t.Fatalf("One with two rows must fail")
	}

	one, err := One(ctx, memQuerier{rows: [][]any{{"contacts", 3}}}, scanName, "select")
	if err != nil || one != "contacts" {
		t.Fatalf("One = %q, %v", one, err)
	}

	_, err = One(ctx, memQuerier{}, scanName, "select")
	if !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("One on empty = %v", err)
	}
}

func TestScalar(t *testing.T) {
	v, err := Scalar[string](context.Background(), memQuerier{rows: [][]any{{"2024-01-01"}}}, "select max(date)")
	if err != nil || v != "2024-01-01" {
		t.Fatalf("Scalar = %q, %v", v, err)
	}
}
