package repo

import (
	"context"
	"fmt"
	"strings"

	"epimetrics/internal/core/timeseries"
	"epimetrics/internal/platform/store"
	ptime "epimetrics/internal/platform/time"
	"epimetrics/internal/services/api/series/domain"
)

// queries implements Repo for both dialects; only the rendered SQL differs
type queries struct {
	q       store.Querier
	dialect Dialect
}

func (r *queries) Backend() string {
	if r.dialect == ClickHouse {
		return BackendCH
	}
	return BackendPG
}

// dialect specific fragments
func (r *queries) text(col string) string {
	if r.dialect == ClickHouse {
		return "ifNull(toString(" + col + "), '')"
	}
	return "coalesce(" + col + "::text, '')"
}

func (r *queries) sum(col string) string {
	if r.dialect == ClickHouse {
		return "toFloat64(sum(" + col + "))"
	}
	return "sum(" + col + ")::float8"
}

func (r *queries) first(col string) string {
	if r.dialect == ClickHouse {
		return "ifNull(toString(argMin(" + col + ", (created_at, id))), '')"
	}
	return "coalesce((array_agg(" + col + "::text order by created_at, id))[1], '')"
}

func (r *queries) day(expr string) string {
	if r.dialect == ClickHouse {
		return "toString(" + expr + ")"
	}
	return expr + "::text"
}

func (r *queries) placeholder(n int) string {
	if r.dialect == ClickHouse {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// aggregateSQL renders the grouped count for q
func (r *queries) aggregateSQL(q AggQuery) (string, []any) {
	where, args := q.Filter.SQL(r.dialect, 1)

	key := "''"
	group := "date"
	if q.GroupBy != "" {
		key = r.text(q.GroupBy)
		group = "date, " + q.GroupBy
	}
	cols := []string{r.day("date"), key, r.sum("total")}
	for _, l := range q.Labels {
		cols = append(cols, r.first(l))
	}

	sql := "select " + strings.Join(cols, ", ") +
		"\nfrom records\nwhere " + where +
		"\ngroup by " + group +
		"\norder by " + group
	return sql, args
}

func (r *queries) Aggregate(ctx context.Context, q AggQuery) ([]timeseries.RawRow, error) {
	sql, args := r.aggregateSQL(q)
	return store.Many(ctx, r.q, func(row store.Row) (timeseries.RawRow, error) {
		var day string
		var out timeseries.RawRow
		labels := make([]string, len(q.Labels))
		dest := []any{&day, &out.SplitKey, &out.Total}
		for i := range labels {
			dest = append(dest, &labels[i])
		}
		if err := row.Scan(dest...); err != nil {
			return out, err
		}
		d, err := ptime.ParseDay(day)
		if err != nil {
			return out, err
		}
		out.Date = d
		for i, l := range q.Labels {
			if labels[i] == "" {
				continue
			}
			if out.Labels == nil {
				out.Labels = make(map[string]string, len(q.Labels))
			}
			out.Labels[l] = labels[i]
		}
		return out, nil
	}, sql, args...)
}

func (r *queries) Sources(ctx context.Context, f Filter) ([]timeseries.Source, error) {
	where, args := f.Where("source", OpPresent).SQL(r.dialect, 1)
	sql := "select source, " + r.day("max(source_date)") +
		"\nfrom records\nwhere " + where +
		"\ngroup by source\norder by source"
	return store.Many(ctx, r.q, func(row store.Row) (timeseries.Source, error) {
		var s timeseries.Source
		var day string
		if err := row.Scan(&s.Name, &day); err != nil {
			return s, err
		}
		d, err := ptime.ParseDay(day)
		if err != nil {
			return s, err
		}
		s.Date = d
		return s, nil
	}, sql, args...)
}

func (r *queries) Survey(ctx context.Context, id string) (domain.Survey, error) {
	sql := "select id, title, question, answers\nfrom surveys\nwhere id = " + r.placeholder(1)
	return store.One(ctx, r.q, func(row store.Row) (domain.Survey, error) {
		var s domain.Survey
		err := row.Scan(&s.ID, &s.Title, &s.Question, &s.Answers)
		return s, err
	}, sql, id)
}
