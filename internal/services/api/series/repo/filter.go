package repo

import (
	"fmt"
	"strings"

	"epimetrics/internal/services/api/series/domain"
)

// Op is a predicate operator
type Op uint8

const (
	// OpEq is column = value
	OpEq Op = iota
	// OpIn is column membership in a list
	OpIn
	// OpGte is an inclusive lower bound
	OpGte
	// OpLte is an inclusive upper bound
	OpLte
	// OpPresent requires a non blank value
	OpPresent
)

// Dialect picks the placeholder style
type Dialect uint8

const (
	// Postgres renders $1, $2, ...
	Postgres Dialect = iota
	// ClickHouse renders ?
	ClickHouse
)

// Cond is one conjunct of a Filter
type Cond struct {
	Column string
	Op     Op
	Args   []any
}

// Filter is the canonical predicate handed to an aggregator; conditions are ANDed.
// Column names come from the dataset registry, never from the request.
type Filter struct {
	Conds []Cond
}

// Where returns a copy of f with one more condition
func (f Filter) Where(column string, op Op, args ...any) Filter {
	conds := make([]Cond, len(f.Conds), len(f.Conds)+1)
	copy(conds, f.Conds)
	return Filter{Conds: append(conds, Cond{Column: column, Op: op, Args: args})}
}

// Has reports whether a condition on column exists
func (f Filter) Has(column string) bool {
	for _, c := range f.Conds {
		if c.Column == column {
			return true
		}
	}
	return false
}

// SQL renders the WHERE body and its args; next is the first placeholder number for Postgres.
// An empty filter renders "true".
func (f Filter) SQL(d Dialect, next int) (string, []any) {
	if len(f.Conds) == 0 {
		return "true", nil
	}
	ph := func() string {
		if d == ClickHouse {
			return "?"
		}
		next++
		return fmt.Sprintf("$%d", next-1)
	}

	parts := make([]string, 0, len(f.Conds))
	var args []any
	for _, c := range f.Conds {
		switch c.Op {
		case OpEq:
			parts = append(parts, c.Column+" = "+ph())
			args = append(args, c.Args[0])
		case OpIn:
			marks := make([]string, len(c.Args))
			for i := range c.Args {
				marks[i] = ph()
			}
			parts = append(parts, c.Column+" IN ("+strings.Join(marks, ", ")+")")
			args = append(args, c.Args...)
		case OpGte:
			parts = append(parts, c.Column+" >= "+ph())
			args = append(args, c.Args[0])
		case OpLte:
			parts = append(parts, c.Column+" <= "+ph())
			args = append(args, c.Args[0])
		case OpPresent:
			parts = append(parts, "coalesce("+c.Column+", '') <> ''")
		}
	}
	return strings.Join(parts, " AND "), args
}

// members renders one or many values as Eq or In
func members(f Filter, column string, values []string) Filter {
	switch len(values) {
	case 0:
		return f
	case 1:
		return f.Where(column, OpEq, values[0])
	default:
		args := make([]any, len(values))
		for i, v := range values {
			args[i] = v
		}
		return f.Where(column, OpIn, args...)
	}
}

// BuildFilter turns a validated query into the predicate for ds.
// Dates stay as YYYY-MM-DD strings so both backends compare them against their date column.
func BuildFilter(q domain.SeriesQuery, ds domain.Dataset) (Filter, error) {
	f := Filter{}.Where("dataset", OpEq, ds.Name)
	f = members(f, "location", q.Location)
	if q.StartDate != "" {
		f = f.Where("date", OpGte, q.StartDate)
	}
	if q.EndDate != "" {
		f = f.Where("date", OpLte, q.EndDate)
	}
	if q.Split != "" {
		col, err := ds.Column(q.Split)
		if err != nil {
			return Filter{}, err
		}
		f = f.Where(col, OpPresent)
	}
	f = members(f, "category", q.Category)
	f = members(f, "subcategory", q.Subcategory)
	return f, nil
}
