package timeseries

import (
	"testing"
	"time"

	"epimetrics/internal/platform/testkit"
)

// days builds consecutive unsplit records starting at from
func days(t *testing.T, from string, totals ...float64) []DailyRecord {
	t.Helper()
	start := testkit.Day(t, from)
	out := make([]DailyRecord, len(totals))
	for i, v := range totals {
		out[i] = DailyRecord{Date: start.AddDate(0, 0, i), Total: v}
	}
	return out
}

func withSplit(r DailyRecord, kv ...any) DailyRecord {
	for i := 0; i < len(kv); i += 2 {
		r.Split = append(r.Split, SplitValue{Key: kv[i].(string), Total: kv[i+1].(float64)})
	}
	return r
}

func TestDaily(t *testing.T) {
	recs := days(t, "2021-01-01", 3, 0)
	recs[0] = withSplit(recs[0], "F", 2.0, "M", 1.0)
	recs[1] = withSplit(recs[1], "F", 0.0)

	v := Daily(recs)
	if v.Name != ViewDaily || v.XAxis[0] != "2021-01-01" || v.XAxis[1] != "2021-01-02" {
		t.Fatalf("view = %+v", v)
	}
	if len(v.Split) != 2 || v.Split[1].Key != "M" {
		t.Fatalf("split = %+v", v.Split)
	}
	testkit.Floats(t, "M", v.Split[1].Values, []float64{1, 0})

	v.Split[0].Values[0] = 99
	v.YAxis[0] = 99
	if recs[0].Split[0].Total != 2 || recs[0].Total != 3 {
		t.Fatalf("Daily must not alias its input")
	}
}

func TestWeekly(t *testing.T) {
	// 2021-01-01 is a Friday
	recs := days(t, "2021-01-01", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	for i := range recs {
		recs[i] = withSplit(recs[i], "all", recs[i].Total)
	}

	v := Weekly(recs, time.Sunday)
	if len(v.XAxis) != 3 || v.XAxis[0] != "2021-01-03" || v.XAxis[1] != "2021-01-10" || v.XAxis[2] != "2021-01-12" {
		t.Fatalf("labels = %v", v.XAxis)
	}
	testkit.Floats(t, "weekly", v.YAxis, []float64{6, 49, 23})
	testkit.Floats(t, "weekly split", v.Split[0].Values, []float64{6, 49, 23})

	wed := Weekly(recs, time.Wednesday)
	if wed.XAxis[0] != "2021-01-06" || wed.XAxis[1] != "2021-01-12" {
		t.Fatalf("wednesday labels = %v", wed.XAxis)
	}
	testkit.Floats(t, "wednesday", wed.YAxis, []float64{21, 57})

	var sum float64
	for _, x := range v.YAxis {
		sum += x
	}
	if sum != 78 {
		t.Fatalf("weekly buckets must preserve the total, got %v", sum)
	}

	empty := Weekly(nil, time.Sunday)
	if len(empty.XAxis) != 0 || empty.YAxis == nil {
		t.Fatalf("empty weekly = %+v", empty)
	}
}

func TestDataDrivenWeekday(t *testing.T) {
	recs := days(t, "2021-01-01", 1, 0, 2, 0, 0, 0, 0, 1, 0, 3)
	// Fridays: 01-01, 01-08; Sundays: 01-03, 01-10 -> tie goes to Sunday
	if got := DataDrivenWeekday(recs); got != time.Sunday {
		t.Fatalf("tie = %v, want Sunday", got)
	}
	recs = append(recs, days(t, "2021-01-15", 4)...)
	if got := DataDrivenWeekday(recs); got != time.Friday {
		t.Fatalf("got %v, want Friday", got)
	}
	if got := DataDrivenWeekday(days(t, "2021-01-06", 0, 0)); got != time.Sunday {
		t.Fatalf("all-zero = %v", got)
	}
}

func TestCumulativeSplit(t *testing.T) {
	recs := days(t, "2021-01-01", 3, 0, 5)
	recs[0] = withSplit(recs[0], "F", 1.0, "M", 2.0)
	recs[1] = withSplit(recs[1], "F", 0.0, "M", 0.0)
	recs[2] = withSplit(recs[2], "F", 5.0, "M", 0.0)
	v := Cumulative(recs)
	testkit.Floats(t, "total", v.YAxis, []float64{3, 3, 8})
	testkit.Floats(t, "F", v.Split[0].Values, []float64{1, 1, 6})
	testkit.Floats(t, "M", v.Split[1].Values, []float64{2, 2, 2})
}

func TestProportionalIncrease(t *testing.T) {
	recs := days(t, "2021-01-01", 10, 0, 4, 6)
	v := ProportionalIncrease(recs, 0)
	testkit.Floats(t, "increase", v.YAxis, []float64{0, -100, 0, 50})

	skipped := ProportionalIncrease(recs, 1)
	testkit.Floats(t, "skipped", skipped.YAxis, []float64{-100, 0, 50})
	if skipped.XAxis[0] != "2021-01-02" {
		t.Fatalf("x = %v", skipped.XAxis)
	}
	if got := ProportionalIncrease(recs, 10); len(got.YAxis) != 0 || len(got.XAxis) != 0 {
		t.Fatalf("over-skip = %+v", got)
	}
}

func TestRollingAverageLength(t *testing.T) {
	for n := 0; n <= 30; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i)
		}
		want := n - 6
		if want < 0 {
			want = 0
		}
		if got := len(Average7(days(t, "2021-01-01", values...)).YAxis); got != want {
			t.Fatalf("n=%d: len = %d, want %d", n, got, want)
		}
		if got := len(RollingAverage(values, 7)); got != want {
			t.Fatalf("n=%d: RollingAverage len = %d, want %d", n, got, want)
		}
	}
	testkit.Floats(t, "window 3", RollingAverage([]float64{3, 6, 9, 12}, 3), []float64{6, 9})
	if len(RollingAverage([]float64{1, 2}, 0)) != 0 {
		t.Fatalf("window 0 must be empty")
	}
}

func TestAverage7Alignment(t *testing.T) {
	recs := days(t, "2021-01-01", 7, 7, 7, 7, 7, 7, 7, 14)
	v := Average7(recs)
	if v.Name != ViewAverage7 || len(v.XAxis) != 2 || v.XAxis[0] != "2021-01-07" || v.XAxis[1] != "2021-01-08" {
		t.Fatalf("view = %+v", v)
	}
	testkit.Floats(t, "avg7", v.YAxis, []float64{7, 8})

	if Average14(recs).Name != ViewAverage14 || len(Average14(recs).YAxis) != 0 {
		t.Fatalf("avg14 over 8 days must be empty")
	}
}

func TestTwoWeekAverage(t *testing.T) {
	recs := days(t, "2021-01-01", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	v := TwoWeekAverage(recs, time.Sunday)
	if v.Name != ViewTwoWeekAverage || len(v.XAxis) != 2 || v.XAxis[0] != "2021-01-10" {
		t.Fatalf("view = %+v", v)
	}
	testkit.Floats(t, "avg2w", v.YAxis, []float64{27.5, 36})
}

func TestPercentages(t *testing.T) {
	recs := days(t, "2021-01-01", 4, 0)
	recs[0] = withSplit(recs[0], "F", 3.0, "M", 1.0)
	recs[1] = withSplit(recs[1], "F", 0.0, "M", 0.0)
	v := Percentages(recs)
	testkit.Floats(t, "F", v.Split[0].Values, []float64{75, 0})
	testkit.Floats(t, "M", v.Split[1].Values, []float64{25, 0})
	testkit.Floats(t, "y", v.YAxis, []float64{100, 0})
}

func TestComputePercentage(t *testing.T) {
	testkit.Floats(t, "zero den", ComputePercentage([]float64{5}, []float64{0}), []float64{0})
	testkit.Floats(t, "ratio", ComputePercentage([]float64{1, 2, 3}, []float64{4, 8}), []float64{25, 25, 0})
}

func TestDetermineUptakePerSplitType(t *testing.T) {
	recs := days(t, "2021-01-01", 0, 5, 9, 0)
	recs[0] = withSplit(recs[0], "F", 0.0, "M", 0.0)
	recs[1] = withSplit(recs[1], "F", 2.0, "M", 3.0)
	recs[2] = withSplit(recs[2], "F", 4.0, "M", 5.0)
	recs[3] = withSplit(recs[3], "F", 0.0, "M", 0.0)

	all := DetermineUptakePerSplitType(recs, IntervalAll)
	if len(all) != 2 || all[0].Total != 4 || all[1].Total != 5 {
		t.Fatalf("all = %+v", all)
	}
	diff := DetermineUptakePerSplitType(recs, "range")
	if diff[0].Total != 2 || diff[1].Total != 2 {
		t.Fatalf("range = %+v", diff)
	}

	// a zero-filled tail past the last data day does not reset the latest values
	tail := append(append([]DailyRecord{}, recs...), withSplit(DailyRecord{Date: testkit.Day(t, "2021-01-05")}, "F", 0.0, "M", 0.0))
	if got := DetermineUptakePerSplitType(tail, IntervalAll); got[0].Total != 4 || got[1].Total != 5 {
		t.Fatalf("all with zero tail = %+v", got)
	}

	none := DetermineUptakePerSplitType(recs[:1], "range")
	if len(none) != 2 || none[0].Total != 0 {
		t.Fatalf("no data days = %+v", none)
	}
}
