// Package service contains series workflows
package service

import (
	"context"
	"errors"
	"time"

	"epimetrics/internal/core/timeseries"
	"epimetrics/internal/platform/cache"
	perr "epimetrics/internal/platform/errors"
	"epimetrics/internal/platform/logger"
	"epimetrics/internal/platform/metrics"
	ptime "epimetrics/internal/platform/time"
	"epimetrics/internal/services/api/series/domain"
	"epimetrics/internal/services/api/series/repo"
)

// Service defines the series service contract
type Service interface {
	domain.ServicePort
}

// Config tunes the service; zero values fall back to defaults
type Config struct {
	// Anchor is the weekday weekly buckets end on when the request does not pick one
	Anchor time.Weekday
	// Now stamps the placeholder source when no data carries provenance
	Now func() time.Time
}

// Svc implements the series service
type Svc struct {
	Repo   repo.Repo
	cache  *cache.Cache
	anchor time.Weekday
	now    func() time.Time
}

// New constructs a series service; c may be nil to disable caching
func New(r repo.Repo, c *cache.Cache, cfg Config) *Svc {
	if r == nil {
		panic("series.Service requires a non nil Repo")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Svc{Repo: r, cache: c, anchor: cfg.Anchor, now: cfg.Now}
}

// plan is a resolved SeriesQuery: dataset, predicate and fill policy
type plan struct {
	ds         domain.Dataset
	filter     repo.Filter
	column     string
	start, end *time.Time
	taxonomy   domain.Taxonomy
}

func (s *Svc) plan(q domain.SeriesQuery) (plan, error) {
	ds, err := domain.Lookup(q.Dataset)
	if err != nil {
		return plan{}, err
	}
	start, end, err := q.Bounds()
	if err != nil {
		return plan{}, err
	}
	if start != nil && end != nil && start.After(*end) {
		return plan{}, timeseries.ErrInvertedInterval
	}
	f, err := repo.BuildFilter(q, ds)
	if err != nil {
		return plan{}, err
	}
	p := plan{ds: ds, filter: f, start: start, end: end}
	if q.Split != "" {
		p.column, _ = ds.Column(q.Split)
		p.taxonomy = domain.TaxonomyOf(q.Split)
	}
	return p, nil
}

func (p plan) fill(rows []timeseries.RawRow) ([]timeseries.DailyRecord, error) {
	return timeseries.Fill(rows, timeseries.FillRequest{
		Start:     p.start,
		End:       p.end,
		Split:     p.column != "",
		Preferred: p.taxonomy.Keys,
		Colors:    p.taxonomy.Colors,
	})
}

// fetched is what one tagged job produced
type fetched struct {
	rows    []timeseries.RawRow
	sources []timeseries.Source
	survey  domain.Survey
}

func (s *Svc) aggregate(tag Tag, p plan, groupBy string) Job[fetched] {
	q := repo.AggQuery{Filter: p.filter, GroupBy: groupBy, Labels: p.ds.Labels}
	return func(ctx context.Context) (fetched, error) {
		start := time.Now()
		rows, err := s.Repo.Aggregate(ctx, q)
		metrics.ObserveAggregation(s.Repo.Backend(), p.ds.Name, string(tag), start, len(rows), err)
		return fetched{rows: rows}, err
	}
}

func (s *Svc) sources(p plan) Job[fetched] {
	return func(ctx context.Context) (fetched, error) {
		start := time.Now()
		src, err := s.Repo.Sources(ctx, p.filter)
		metrics.ObserveAggregation(s.Repo.Backend(), p.ds.Name, string(TagSources), start, len(src), err)
		return fetched{sources: src}, err
	}
}

func (s *Svc) run(ctx context.Context, jobs map[Tag]Job[fetched]) (map[Tag]fetched, error) {
	res, err := RunTagged(ctx, jobs)
	if err != nil {
		return nil, perr.FromStorage(err, "series aggregation failed")
	}
	return res, nil
}

func (s *Svc) meta(parts ...[]timeseries.Source) domain.Meta {
	md := make([]timeseries.Metadata, len(parts))
	for i, p := range parts {
		md[i] = timeseries.Metadata{Sources: p}
	}
	return domain.MetaFrom(timeseries.MergeMetadata(s.now(), md...))
}

// daily is the uncached read shared by Daily and Views
func (s *Svc) daily(ctx context.Context, q domain.SeriesQuery) ([]timeseries.DailyRecord, domain.Meta, error) {
	p, err := s.plan(q)
	if err != nil {
		return nil, domain.Meta{}, err
	}
	res, err := s.run(ctx, map[Tag]Job[fetched]{
		TagSeries:  s.aggregate(TagSeries, p, p.column),
		TagSources: s.sources(p),
	})
	if err != nil {
		return nil, domain.Meta{}, err
	}
	records, err := p.fill(res[TagSeries].rows)
	if err != nil {
		return nil, domain.Meta{}, err
	}
	logger.C(ctx).Debug().
		Int("rows", len(res[TagSeries].rows)).
		Int("days", len(records)).
		Str("split", q.Split).
		Msg("series filled")
	return records, s.meta(res[TagSources].sources), nil
}

// Daily returns the gap filled daily series
func (s *Svc) Daily(ctx context.Context, in domain.SeriesQuery) (domain.DailyResult, error) {
	ctx = logger.WithDataset(ctx, in.Dataset)
	return cache.Remember(ctx, s.cache, "daily", in, func(ctx context.Context) (domain.DailyResult, error) {
		records, meta, err := s.daily(ctx, in)
		if err != nil {
			return domain.DailyResult{}, err
		}
		meta.PeriodType = timeseries.ViewDaily
		return domain.DailyResult{Records: records, Meta: meta}, nil
	})
}

var allViews = []string{
	timeseries.ViewDaily,
	timeseries.ViewWeekly,
	timeseries.ViewCumulative,
	timeseries.ViewProportionalIncrease,
	timeseries.ViewAverage7,
	timeseries.ViewAverage14,
	timeseries.ViewTwoWeekAverage,
	timeseries.ViewPercentage,
}

// anchorFor resolves the weekly anchor: explicit name, "data" for the data driven weekday, else the default
func (s *Svc) anchorFor(name string, records []timeseries.DailyRecord) time.Weekday {
	if name == "data" {
		return timeseries.DataDrivenWeekday(records)
	}
	if d, ok := ptime.ParseWeekday(name); ok {
		return d
	}
	return s.anchor
}

// Views returns the requested derived views over the daily series
func (s *Svc) Views(ctx context.Context, in domain.ViewsQuery) (domain.ViewsResult, error) {
	ctx = logger.WithDataset(ctx, in.Dataset)
	return cache.Remember(ctx, s.cache, "views", in, func(ctx context.Context) (domain.ViewsResult, error) {
		records, meta, err := s.daily(ctx, in.SeriesQuery)
		if err != nil {
			return domain.ViewsResult{}, err
		}
		anchor := s.anchorFor(in.WeekAnchor, records)

		names := in.Views
		if len(names) == 0 {
			names = allViews
		}
		out := domain.ViewsResult{Views: make([]timeseries.SeriesView, 0, len(names))}
		for _, name := range names {
			switch name {
			case timeseries.ViewDaily:
				out.Views = append(out.Views, timeseries.Daily(records))
			case timeseries.ViewWeekly:
				out.Views = append(out.Views, timeseries.Weekly(records, anchor))
			case timeseries.ViewCumulative:
				out.Views = append(out.Views, timeseries.Cumulative(records))
			case timeseries.ViewProportionalIncrease:
				out.Views = append(out.Views, timeseries.ProportionalIncrease(records, in.Skip))
			case timeseries.ViewAverage7:
				out.Views = append(out.Views, timeseries.Average7(records))
			case timeseries.ViewAverage14:
				out.Views = append(out.Views, timeseries.Average14(records))
			case timeseries.ViewTwoWeekAverage:
				out.Views = append(out.Views, timeseries.TwoWeekAverage(records, anchor))
			case timeseries.ViewPercentage:
				out.Views = append(out.Views, timeseries.Percentages(records))
			default:
				return domain.ViewsResult{}, perr.WithField(perr.InvalidArgf("unknown view %q", name), "views")
			}
		}
		if in.Split != "" {
			out.Uptake = timeseries.DetermineUptakePerSplitType(records, in.Interval)
		}
		meta.Weekday = anchor.String()
		out.Meta = meta
		return out, nil
	})
}

// Locations returns the daily series broken down per location
func (s *Svc) Locations(ctx context.Context, in domain.SeriesQuery) (domain.LocationsResult, error) {
	ctx = logger.WithDataset(ctx, in.Dataset)
	return cache.Remember(ctx, s.cache, "locations", in, func(ctx context.Context) (domain.LocationsResult, error) {
		p, err := s.plan(in)
		if err != nil {
			return domain.LocationsResult{}, err
		}
		res, err := s.run(ctx, map[Tag]Job[fetched]{
			TagSeries:  s.aggregate(TagSeries, p, domain.SplitLocation),
			TagSources: s.sources(p),
		})
		if err != nil {
			return domain.LocationsResult{}, err
		}
		records, err := timeseries.FillLocations(res[TagSeries].rows, p.start, p.end, in.Location)
		if err != nil {
			return domain.LocationsResult{}, err
		}
		meta := s.meta(res[TagSources].sources)
		meta.PeriodType = timeseries.ViewDaily
		return domain.LocationsResult{Records: records, Meta: meta}, nil
	})
}

// Social issues sentiment, volume and the opted-in emotion and topic aggregations concurrently
func (s *Svc) Social(ctx context.Context, in domain.SocialQuery) (domain.SocialResult, error) {
	ctx = logger.WithDataset(ctx, domain.DatasetSocialMedia)
	return cache.Remember(ctx, s.cache, "social", in, func(ctx context.Context) (domain.SocialResult, error) {
		splits := map[Tag]string{TagSentiment: domain.SplitSentiment, TagVolume: ""}
		if in.IncludeEmotion {
			splits[TagEmotion] = domain.SplitEmotion
		}
		if in.IncludeTopics {
			splits[TagTopics] = domain.SplitTopic
		}

		plans := make(map[Tag]plan, len(splits))
		jobs := make(map[Tag]Job[fetched], len(splits)+1)
		for tag, split := range splits {
			p, err := s.plan(in.Series(split))
			if err != nil {
				return domain.SocialResult{}, err
			}
			plans[tag] = p
			jobs[tag] = s.aggregate(tag, p, p.column)
		}
		jobs[TagSources] = s.sources(plans[TagVolume])

		res, err := s.run(ctx, jobs)
		if err != nil {
			return domain.SocialResult{}, err
		}

		filled := make(map[Tag][]timeseries.DailyRecord, len(plans))
		for tag, p := range plans {
			records, err := p.fill(res[tag].rows)
			if err != nil {
				return domain.SocialResult{}, err
			}
			filled[tag] = records
		}
		meta := s.meta(res[TagSources].sources)
		meta.PeriodType = timeseries.ViewDaily
		return domain.SocialResult{
			Sentiment: filled[TagSentiment],
			Emotion:   filled[TagEmotion],
			Volume:    filled[TagVolume],
			Topics:    filled[TagTopics],
			Meta:      meta,
		}, nil
	})
}

// SurveyAnswers returns the per answer breakdown of one survey; an unknown survey fails the request
func (s *Svc) SurveyAnswers(ctx context.Context, in domain.SurveyQuery) (domain.SurveyResult, error) {
	ctx = logger.WithDataset(ctx, domain.DatasetSurveyAnswers)
	return cache.Remember(ctx, s.cache, "survey", in, func(ctx context.Context) (domain.SurveyResult, error) {
		p, err := s.plan(in.Series())
		if err != nil {
			return domain.SurveyResult{}, err
		}
		p.filter = p.filter.Where("survey_id", repo.OpEq, in.SurveyID)

		res, err := s.run(ctx, map[Tag]Job[fetched]{
			TagSurvey: func(ctx context.Context) (fetched, error) {
				sv, err := s.Repo.Survey(ctx, in.SurveyID)
				if errors.Is(err, perr.ErrNotFound) {
					return fetched{}, perr.WithField(perr.NotFoundf("survey %q not found", in.SurveyID), "survey_id")
				}
				return fetched{survey: sv}, err
			},
			TagSeries:  s.aggregate(TagSeries, p, p.column),
			TagSources: s.sources(p),
		})
		if err != nil {
			return domain.SurveyResult{}, err
		}

		survey := res[TagSurvey].survey
		p.taxonomy = domain.Taxonomy{Keys: survey.Answers}
		records, err := p.fill(res[TagSeries].rows)
		if err != nil {
			return domain.SurveyResult{}, err
		}
		meta := s.meta(res[TagSources].sources)
		meta.PeriodType = timeseries.ViewDaily
		meta.Survey = &survey
		return domain.SurveyResult{
			Records: records,
			Uptake:  timeseries.DetermineUptakePerSplitType(records, in.Interval),
			Meta:    meta,
		}, nil
	})
}

// Datasets lists the dataset catalogue
func (s *Svc) Datasets(context.Context) ([]domain.DatasetInfo, error) {
	return domain.Catalogue(), nil
}
