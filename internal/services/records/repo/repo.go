// Package repo provides postgres and clickhouse writes for the loader
package repo

import (
	"context"
	"fmt"
	"strings"

	"epimetrics/internal/modkit/repokit"
	pstr "epimetrics/internal/platform/strings"
	"epimetrics/internal/services/records/domain"
)

// recordColumns is the insert order shared by both backends
var recordColumns = []string{
	"id", "dataset", "location", "date", "total",
	"category", "subcategory", "age_group", "gender", "sentiment", "emotion", "topic", "answer",
	"survey_id", "policy", "source", "source_date", "created_at",
}

// MaxChunk is the most records one insert can carry within postgres's 65535 bind parameters
var MaxChunk = 65535 / len(recordColumns)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// Lock takes a transaction scoped advisory lock keyed by dataset
func (r *queries) Lock(ctx context.Context, dataset string) error {
	_, err := r.q.Exec(ctx, `select pg_advisory_xact_lock(hashtext('records:' || $1))`, dataset)
	return err
}

// InsertRecords writes rs as one multi-row insert; existing ids are left untouched
func (r *queries) InsertRecords(ctx context.Context, rs []domain.Record) (int, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	sql, args := insertSQL(rs)
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %d records: %w", len(rs), err)
	}
	return int(tag.RowsAffected()), nil
}

// UpsertSurvey creates or replaces a survey definition
func (r *queries) UpsertSurvey(ctx context.Context, s domain.Survey) error {
	_, err := r.q.Exec(ctx, `
		insert into surveys (id, title, question, answers, updated_at)
		values ($1, $2, $3, $4, now())
		on conflict (id) do update
		set title = excluded.title, question = excluded.question,
			answers = excluded.answers, updated_at = now()
	`, s.ID, s.Title, s.Question, s.Answers)
	if err != nil {
		return fmt.Errorf("upsert survey %s: %w", s.ID, err)
	}
	return nil
}

func insertSQL(rs []domain.Record) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(rs)*len(recordColumns))
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString("insert into records (")
	b.WriteString(strings.Join(recordColumns, ", "))
	b.WriteString(")\nvalues ")
	for i, rec := range rs {
		if i > 0 {
			b.WriteString(",\n\t")
		}
		vals := values(rec)
		marks := make([]string, len(vals))
		for j, v := range vals {
			marks[j] = arg(v)
		}
		// date columns arrive as YYYY-MM-DD text
		marks[3] += "::date"
		marks[16] += "::date"
		b.WriteString("(" + strings.Join(marks, ", ") + ")")
	}
	b.WriteString("\non conflict (id) do nothing")
	return b.String(), args
}

// values returns rec in recordColumns order with blanks as NULL
func values(rec domain.Record) []any {
	return []any{
		rec.ID, rec.Dataset, rec.Location, rec.Date, rec.Total,
		pstr.SQLNull(rec.Category), pstr.SQLNull(rec.Subcategory),
		pstr.SQLNull(rec.AgeGroup), pstr.SQLNull(rec.Gender),
		pstr.SQLNull(rec.Sentiment), pstr.SQLNull(rec.Emotion),
		pstr.SQLNull(rec.Topic), pstr.SQLNull(rec.Answer),
		pstr.SQLNull(rec.SurveyID), pstr.SQLNull(rec.Policy),
		pstr.SQLNull(rec.Source), pstr.SQLNull(rec.SourceDate),
		rec.CreatedAt,
	}
}
