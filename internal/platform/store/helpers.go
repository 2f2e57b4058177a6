package store

import (
	"context"
	"fmt"

	perr "epimetrics/internal/platform/errors"
)

// Scalar queries the first row, first column into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// One maps exactly one row into T; no rows is perr.ErrNotFound
func One[T any](ctx context.Context, q Querier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	items, err := Many(ctx, q, scan, sql, args...)
	if err != nil {
		return zero, err
	}
	switch len(items) {
	case 0:
		return zero, perr.ErrNotFound
	case 1:
		return items[0], nil
	default:
		return zero, fmt.Errorf("expected 1 row, got %d", len(items))
	}
}

// Many uses a custom scanner to map all rows into []T
func Many[T any](ctx context.Context, q Querier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
