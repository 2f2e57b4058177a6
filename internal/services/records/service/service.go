// Package service provides the records loader implementation
package service

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"epimetrics/internal/modkit/repokit"
	perr "epimetrics/internal/platform/errors"
	"epimetrics/internal/platform/logger"
	"epimetrics/internal/platform/metrics"
	"epimetrics/internal/platform/net/http/bind"
	pstr "epimetrics/internal/platform/strings"
	seriesdom "epimetrics/internal/services/api/series/domain"
	"epimetrics/internal/services/records/domain"
	"epimetrics/internal/services/records/reader"
)

// Config holds configuration options for the loader
type Config struct {
	// Chunk is the number of records per insert statement; <=0 -> 500
	Chunk int

	// MaxRetries is the number of attempts for the whole transaction; <=0 -> 1
	MaxRetries int

	// RetryBase is the first backoff step; <=0 -> 250ms
	RetryBase time.Duration

	// MaxErrors caps the line errors kept in the report; <=0 -> 100
	MaxErrors int
}

// Service implements domain.LoaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Mirror domain.Mirror
	Cfg    Config

	now func() time.Time
}

// New constructs the loader; mirror may be nil
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], mirror domain.Mirror, cfg Config) *Service {
	if db == nil {
		panic("records.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("records.Service requires a non nil Repo binder")
	}
	if cfg.Chunk <= 0 {
		cfg.Chunk = 500
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 250 * time.Millisecond
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 100
	}
	return &Service{DB: db, Binder: binder, Mirror: mirror, Cfg: cfg, now: time.Now}
}

// batch is a fully validated file
type batch struct {
	records []domain.Record
	surveys []domain.Survey
	invalid int
}

// Load validates every line of r and, unless opt.DryRun, writes the lot in one transaction.
// Any invalid line rejects the whole file with a validation error and the report lists them.
func (s *Service) Load(ctx context.Context, r io.Reader, opt domain.LoadOptions) (domain.Report, error) {
	if opt.Dataset != "" {
		ctx = logger.WithDataset(ctx, opt.Dataset)
	}
	rep := domain.Report{DryRun: opt.DryRun, Datasets: map[string]int{}}

	b, err := s.read(r, opt, &rep)
	if err != nil {
		return rep, err
	}
	if len(rep.Errors) > 0 {
		first := rep.Errors[0]
		e := perr.Newf(perr.ErrorCodeValidation, "%d invalid lines; line %d: %s", b.invalid, first.Line, first.Message)
		return rep, perr.WithField(e, first.Field)
	}

	l := logger.C(ctx)
	if opt.DryRun {
		l.Info().Int("records", rep.Records).Int("surveys", rep.Surveys).Msg("records: dry run ok")
		return rep, nil
	}

	start := time.Now()
	inserted, err := s.writeWithRetry(ctx, b)
	if err != nil {
		return rep, perr.FromStorage(err, "load records")
	}
	rep.Inserted = inserted

	if s.Mirror != nil {
		for _, chunk := range lo.Chunk(b.records, s.Cfg.Chunk) {
			if err := s.Mirror.Insert(ctx, chunk); err != nil {
				l.Error().Err(err).Int("mirrored", rep.Mirrored).Msg("records: clickhouse mirror failed")
				return rep, perr.FromStorage(err, "mirror records")
			}
			rep.Mirrored += len(chunk)
		}
	}

	for ds, n := range rep.Datasets {
		metrics.LoadedRecords.WithLabelValues(ds).Add(float64(n))
	}
	l.Info().
		Int("lines", rep.Lines).
		Int("records", rep.Records).
		Int("inserted", rep.Inserted).
		Int("surveys", rep.Surveys).
		Int("mirrored", rep.Mirrored).
		Dur("elapsed", time.Since(start)).
		Msg("records: load committed")
	return rep, nil
}

// read decodes and validates every line, collecting line errors instead of stopping
func (s *Service) read(r io.Reader, opt domain.LoadOptions, rep *domain.Report) (batch, error) {
	var b batch
	rd, err := reader.New(r)
	if err != nil {
		return b, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "open input")
	}
	defer func() { _ = rd.Close() }()

	reject := func(line int, field, msg string) {
		b.invalid++
		if len(rep.Errors) < s.Cfg.MaxErrors {
			rep.Errors = append(rep.Errors, domain.LineError{Line: line, Field: field, Message: msg})
		}
	}

	for {
		ln, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if de, ok := reader.AsDecodeError(err); ok {
			reject(de.Line, "", de.Err.Error())
			continue
		}
		if err != nil {
			return b, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read input")
		}

		switch {
		case ln.Record != nil:
			rec := *ln.Record
			if err := s.prepare(&rec, opt); err != nil {
				w := perr.WireFrom(err)
				reject(ln.No, w.Field, w.Message)
				continue
			}
			b.records = append(b.records, rec)
			rep.Datasets[rec.Dataset]++
		case ln.Survey != nil:
			sv := *ln.Survey
			sv.Answers = pstr.Labels(sv.Answers)
			if err := bind.Struct(sv); err != nil {
				w := perr.WireFrom(err)
				reject(ln.No, w.Field, w.Message)
				continue
			}
			b.surveys = append(b.surveys, sv)
		}
	}
	rep.Lines, _ = rd.Stats()
	rep.Records, rep.Surveys = len(b.records), len(b.surveys)
	return b, nil
}

// prepare normalizes rec in place and checks it against the dataset registry
func (s *Service) prepare(rec *domain.Record, opt domain.LoadOptions) error {
	if rec.Dataset == "" {
		rec.Dataset = opt.Dataset
	}
	if opt.Dataset != "" && rec.Dataset != opt.Dataset {
		return perr.WithField(perr.InvalidArgf("dataset %q does not match %q", rec.Dataset, opt.Dataset), "dataset")
	}
	rec.Location = pstr.Label(rec.Location)
	if err := bind.Struct(*rec); err != nil {
		return err
	}
	if _, err := seriesdom.Lookup(rec.Dataset); err != nil {
		return err
	}
	if rec.Dataset == seriesdom.DatasetSurveyAnswers && rec.SurveyID == "" {
		return perr.WithField(perr.InvalidArgf("survey answers need a survey_id"), "survey_id")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	return nil
}

// writeWithRetry runs the transaction again on retryable postgres failures
func (s *Service) writeWithRetry(ctx context.Context, b batch) (int, error) {
	var last error
	for attempt := 1; attempt <= s.Cfg.MaxRetries; attempt++ {
		n, err := s.write(ctx, b)
		if err == nil {
			return n, nil
		}
		last = err
		if !perr.Retryable(err) || attempt == s.Cfg.MaxRetries {
			break
		}
		// backoff with jitter, capped at 10s
		d := min(s.Cfg.RetryBase<<(attempt-1), 10*time.Second)
		sleep := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		logger.C(ctx).Warn().Err(err).Int("attempt", attempt).Dur("sleep", sleep).Msg("records: retrying load")
		if se := sleepCtx(ctx, sleep); se != nil {
			return 0, errors.Join(se, err)
		}
	}
	return 0, last
}

func (s *Service) write(ctx context.Context, b batch) (int, error) {
	inserted := 0
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)

		// fixed lock order across loaders
		datasets := lo.Uniq(lo.Map(b.records, func(r domain.Record, _ int) string { return r.Dataset }))
		sort.Strings(datasets)
		for _, ds := range datasets {
			if err := repo.Lock(ctx, ds); err != nil {
				return err
			}
		}

		for _, sv := range b.surveys {
			if err := repo.UpsertSurvey(ctx, sv); err != nil {
				return err
			}
		}
		for _, chunk := range lo.Chunk(b.records, s.Cfg.Chunk) {
			n, err := repo.InsertRecords(ctx, chunk)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
