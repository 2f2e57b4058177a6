package timeseries

import (
	"maps"
	"time"

	ptime "epimetrics/internal/platform/time"
)

// FillOptions drives FillCalendar
type FillOptions struct {
	Interval DateInterval
	Split    bool
	// Keys is the known split key set in emission order; nil means KnownKeys(nil, rows)
	Keys   []string
	Colors map[string]string
}

type dayAcc struct {
	total  float64
	byKey  map[string]float64
	labels map[string]string
}

// FillCalendar emits exactly one record per day of opts.Interval in ascending order.
// Rows outside the interval are ignored and repeated (day, key) rows are summed.
// When splitting, every known key is present on every day (zero when absent),
// rows without a split key are ignored and a day's total is the sum of its splits.
func FillCalendar(rows []RawRow, opts FillOptions) []DailyRecord {
	keys := opts.Keys
	if opts.Split && keys == nil {
		keys = KnownKeys(nil, rows)
	}

	days := make(map[time.Time]*dayAcc)
	for _, r := range rows {
		if !opts.Interval.Contains(r.Date) {
			continue
		}
		if opts.Split && r.SplitKey == "" {
			continue
		}
		d := ptime.Day(r.Date)
		acc, ok := days[d]
		if !ok {
			acc = &dayAcc{byKey: map[string]float64{}, labels: maps.Clone(r.Labels)}
			days[d] = acc
		}
		acc.total += r.Total
		if opts.Split {
			acc.byKey[r.SplitKey] += r.Total
		}
	}

	out := make([]DailyRecord, opts.Interval.Days())
	eachDay(opts.Interval, func(i int, day time.Time) {
		rec := DailyRecord{Date: day}
		acc := days[day]
		if acc != nil {
			rec.Labels = acc.labels
		}
		if !opts.Split {
			if acc != nil {
				rec.Total = acc.total
			}
			out[i] = rec
			return
		}
		rec.Split = make([]SplitValue, len(keys))
		for j, k := range keys {
			var v float64
			if acc != nil {
				v = acc.byKey[k]
			}
			rec.Split[j] = SplitValue{Key: k, Total: v, Color: opts.Colors[k]}
			rec.Total += v
		}
		out[i] = rec
	})
	return out
}

// FillRequest is the caller-facing fill policy input
type FillRequest struct {
	Start     *time.Time
	End       *time.Time
	Split     bool
	Preferred []string
	Colors    map[string]string
}

// Fill resolves the interval and fills the calendar. With no rows the result is empty unless
// both bounds were given, in which case a zero scaffold over the preferred keys is produced.
func Fill(rows []RawRow, req FillRequest) ([]DailyRecord, error) {
	iv, ok, err := ResolveInterval(req.Start, req.End, rows)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []DailyRecord{}, nil
	}
	opts := FillOptions{Interval: iv, Split: req.Split, Colors: req.Colors}
	if req.Split {
		opts.Keys = KnownKeys(req.Preferred, rows)
	}
	return FillCalendar(rows, opts), nil
}

// FillLocations applies the Fill policy keyed by location; RawRow.SplitKey carries the location.
// Every requested location appears on every day, followed by any other observed location.
func FillLocations(rows []RawRow, start, end *time.Time, locations []string) ([]LocationRecord, error) {
	iv, ok, err := ResolveInterval(start, end, rows)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []LocationRecord{}, nil
	}
	filled := FillCalendar(rows, FillOptions{Interval: iv, Split: true, Keys: KnownKeys(locations, rows)})
	out := make([]LocationRecord, len(filled))
	for i, d := range filled {
		locs := make([]LocationValue, len(d.Split))
		for j, s := range d.Split {
			locs[j] = LocationValue{Location: s.Key, Total: s.Total}
		}
		out[i] = LocationRecord{Date: d.Date, Total: d.Total, Locations: locs}
	}
	return out, nil
}
