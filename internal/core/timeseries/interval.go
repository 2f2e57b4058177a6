package timeseries

import (
	"sort"
	"time"

	ptime "epimetrics/internal/platform/time"
)

// ResolveInterval picks the interval to walk. Explicit bounds win; a missing bound is taken
// from the earliest or latest row. ok is false when a bound is missing and there are no rows.
func ResolveInterval(start, end *time.Time, rows []RawRow) (iv DateInterval, ok bool, err error) {
	var lo, hi time.Time
	for i, r := range rows {
		d := ptime.Day(r.Date)
		if i == 0 || d.Before(lo) {
			lo = d
		}
		if i == 0 || d.After(hi) {
			hi = d
		}
	}

	switch {
	case start != nil:
		iv.Start = ptime.Day(*start)
	case len(rows) > 0:
		iv.Start = lo
	default:
		return DateInterval{}, false, nil
	}
	switch {
	case end != nil:
		iv.End = ptime.Day(*end)
	case len(rows) > 0:
		iv.End = hi
	default:
		return DateInterval{}, false, nil
	}

	if iv.Start.After(iv.End) {
		return DateInterval{}, false, ErrInvertedInterval
	}
	return iv, true, nil
}

// KnownKeys is the split key set for a series: preferred keys in their given order,
// then every other observed key in ascending order. Blank keys are skipped.
func KnownKeys(preferred []string, rows []RawRow) []string {
	seen := make(map[string]bool, len(preferred))
	out := make([]string, 0, len(preferred))
	for _, k := range preferred {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	var extra []string
	for _, r := range rows {
		if r.SplitKey == "" || seen[r.SplitKey] {
			continue
		}
		seen[r.SplitKey] = true
		extra = append(extra, r.SplitKey)
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// eachDay calls fn for every day of iv in order
func eachDay(iv DateInterval, fn func(i int, day time.Time)) {
	n := iv.Days()
	for i := 0; i < n; i++ {
		fn(i, iv.Start.AddDate(0, 0, i))
	}
}
