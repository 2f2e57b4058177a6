package timeseries

import (
	"fmt"
	"math"
	"time"

	ptime "epimetrics/internal/platform/time"
)

// finite maps NaN and ±Inf to 0 so they never reach a chart
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// splitLayout collects split keys across records in first-seen order with their first color
func splitLayout(records []DailyRecord) []SplitSeries {
	var out []SplitSeries
	seen := map[string]bool{}
	for _, r := range records {
		for _, s := range r.Split {
			if seen[s.Key] {
				continue
			}
			seen[s.Key] = true
			out = append(out, SplitSeries{Key: s.Key, Color: s.Color})
		}
	}
	return out
}

// splitValue finds key on a record; absent keys read as 0
func splitValue(r DailyRecord, key string) float64 {
	for _, s := range r.Split {
		if s.Key == key {
			return s.Total
		}
	}
	return 0
}

// Daily projects records onto an x axis of YYYY-MM-DD labels, one split series per known key
func Daily(records []DailyRecord) SeriesView {
	v := SeriesView{
		Name:  ViewDaily,
		XAxis: make([]string, len(records)),
		YAxis: make([]float64, len(records)),
	}
	for i, r := range records {
		v.XAxis[i] = ptime.FormatDay(r.Date)
		v.YAxis[i] = r.Total
	}
	for _, s := range splitLayout(records) {
		s.Values = make([]float64, len(records))
		for i, r := range records {
			s.Values[i] = splitValue(r, s.Key)
		}
		v.Split = append(v.Split, s)
	}
	return v
}

// Weekly sums days into buckets ending on anchor. Each bucket is labeled by its end day,
// clipped to the last record, so the trailing bucket may be partial.
func Weekly(records []DailyRecord, anchor time.Weekday) SeriesView {
	v := SeriesView{Name: ViewWeekly, XAxis: []string{}, YAxis: []float64{}}
	layout := splitLayout(records)
	for i := range layout {
		layout[i].Values = []float64{}
	}
	if len(records) == 0 {
		v.Split = layout
		return v
	}

	last := ptime.Day(records[len(records)-1].Date)
	var current time.Time
	for i, r := range records {
		end := weekEnd(ptime.Day(r.Date), anchor)
		if i == 0 || !end.Equal(current) {
			current = end
			label := end
			if label.After(last) {
				label = last
			}
			v.XAxis = append(v.XAxis, ptime.FormatDay(label))
			v.YAxis = append(v.YAxis, 0)
			for k := range layout {
				layout[k].Values = append(layout[k].Values, 0)
			}
		}
		b := len(v.YAxis) - 1
		v.YAxis[b] += r.Total
		for k := range layout {
			layout[k].Values[b] += splitValue(r, layout[k].Key)
		}
	}
	if len(layout) > 0 {
		v.Split = layout
	}
	return v
}

// Cumulative is the running sum of Daily, per split series independently
func Cumulative(records []DailyRecord) SeriesView {
	v := Daily(records)
	v.Name = ViewCumulative
	runningSum(v.YAxis)
	for i := range v.Split {
		runningSum(v.Split[i].Values)
	}
	return v
}

func runningSum(xs []float64) {
	for i := 1; i < len(xs); i++ {
		xs[i] += xs[i-1]
	}
}

// ProportionalIncrease is the day-over-day change of totals in percent: 0 at index 0 and
// whenever the previous day is 0. The first skip points are dropped.
func ProportionalIncrease(records []DailyRecord, skip int) SeriesView {
	d := Daily(records)
	y := make([]float64, len(d.YAxis))
	for i := 1; i < len(y); i++ {
		prev := d.YAxis[i-1]
		if prev == 0 {
			continue
		}
		y[i] = finite((d.YAxis[i] - prev) / prev * 100)
	}
	if skip < 0 {
		skip = 0
	}
	if skip > len(y) {
		skip = len(y)
	}
	return SeriesView{
		Name:  ViewProportionalIncrease,
		XAxis: append([]string{}, d.XAxis[skip:]...),
		YAxis: append([]float64{}, y[skip:]...),
	}
}

// RollingAverage is the trailing mean over window values. The first output point is the mean of
// values[0:window], so the result has max(0, len(values)-window+1) points and no padding.
func RollingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, x := range values {
		sum += x
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// RollingView applies RollingAverage to totals and every split series, aligning x labels
// to the last day of each window
func RollingView(records []DailyRecord, window int) SeriesView {
	return rolling(Daily(records), window, rollingName(window))
}

func rollingName(window int) string {
	switch window {
	case 7:
		return ViewAverage7
	case 14:
		return ViewAverage14
	}
	return fmt.Sprintf("avg%d", window)
}

func rolling(src SeriesView, window int, name string) SeriesView {
	y := RollingAverage(src.YAxis, window)
	v := SeriesView{Name: name, YAxis: y, XAxis: []string{}}
	if len(y) > 0 {
		v.XAxis = append(v.XAxis, src.XAxis[window-1:]...)
	}
	for _, s := range src.Split {
		v.Split = append(v.Split, SplitSeries{Key: s.Key, Color: s.Color, Values: RollingAverage(s.Values, window)})
	}
	return v
}

// Average7 is the 7 day trailing average of the daily series
func Average7(records []DailyRecord) SeriesView { return RollingView(records, 7) }

// Average14 is the 14 day trailing average of the daily series
func Average14(records []DailyRecord) SeriesView { return RollingView(records, 14) }

// TwoWeekAverage averages each week with the one before it
func TwoWeekAverage(records []DailyRecord, anchor time.Weekday) SeriesView {
	return rolling(Weekly(records, anchor), 2, ViewTwoWeekAverage)
}

// Percentages expresses each split value as a share of its day's split sum; y is 100 on days
// with data and 0 otherwise
func Percentages(records []DailyRecord) SeriesView {
	d := Daily(records)
	v := SeriesView{Name: ViewPercentage, XAxis: d.XAxis, YAxis: make([]float64, len(records))}
	sums := make([]float64, len(records))
	for _, s := range d.Split {
		for i, x := range s.Values {
			sums[i] += x
		}
	}
	for _, s := range d.Split {
		pct := ComputePercentage(s.Values, sums)
		for i, p := range pct {
			v.YAxis[i] += p
		}
		v.Split = append(v.Split, SplitSeries{Key: s.Key, Color: s.Color, Values: pct})
	}
	return v
}

// ComputePercentage is num[i]/den[i]*100 with 0 for a zero or missing denominator
func ComputePercentage(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i, n := range num {
		if i >= len(den) || den[i] == 0 {
			continue
		}
		out[i] = finite(n / den[i] * 100)
	}
	return out
}

// IntervalAll asks DetermineUptakePerSplitType for the latest values instead of the net change
const IntervalAll = "all"

// DetermineUptakePerSplitType reports, per split key, the value on the last day with data when
// interval is "all", otherwise last minus first across the first and last days with data.
// A day has data when its total is non-zero and it carries split values.
func DetermineUptakePerSplitType(records []DailyRecord, interval string) []SplitValue {
	layout := splitLayout(records)
	first, last := -1, -1
	for i, r := range records {
		if r.Total == 0 || len(r.Split) == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}

	out := make([]SplitValue, len(layout))
	for k, s := range layout {
		out[k] = SplitValue{Key: s.Key, Color: s.Color}
		if last < 0 {
			continue
		}
		end := splitValue(records[last], s.Key)
		if interval == IntervalAll {
			out[k].Total = end
			continue
		}
		out[k].Total = end - splitValue(records[first], s.Key)
	}
	return out
}
