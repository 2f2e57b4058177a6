package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"epimetrics/internal/modkit/repokit"
	ptime "epimetrics/internal/platform/time"
	"epimetrics/internal/services/records/domain"
)

type mirror struct{ c repokit.Columnar }

// NewCH returns a mirror that batch inserts committed records into clickhouse
func NewCH(c repokit.Columnar) domain.Mirror {
	if c == nil {
		panic("records.NewCH requires a non nil clickhouse client")
	}
	return &mirror{c: c}
}

// Insert sends rs as one batch; clickhouse takes typed dates and uuids, not text
func (m *mirror) Insert(ctx context.Context, rs []domain.Record) error {
	if len(rs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(rs))
	for _, rec := range rs {
		row, err := chRow(rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return m.c.Insert(ctx, "records", rows)
}

func chRow(rec domain.Record) ([]any, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, err
	}
	day, err := ptime.ParseDay(rec.Date)
	if err != nil {
		return nil, err
	}
	var srcDay *time.Time
	if rec.SourceDate != "" {
		d, err := ptime.ParseDay(rec.SourceDate)
		if err != nil {
			return nil, err
		}
		srcDay = &d
	}
	vals := values(rec)
	vals[0], vals[3], vals[16] = id, day, srcDay
	for i, v := range vals {
		// clickhouse Nullable columns want a typed nil pointer, not an untyped nil
		if v == nil {
			vals[i] = (*string)(nil)
		}
	}
	return vals, nil
}
