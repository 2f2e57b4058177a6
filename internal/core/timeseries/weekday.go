package timeseries

import "time"

// DataDrivenWeekday is the weekday with the most non-zero days; ties go to the smallest
// time.Weekday. It only picks a display anchor, totals are unaffected.
func DataDrivenWeekday(records []DailyRecord) time.Weekday {
	var counts [7]int
	for _, r := range records {
		if r.Total != 0 {
			counts[r.Date.Weekday()]++
		}
	}
	best := time.Sunday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if counts[wd] > counts[best] {
			best = wd
		}
	}
	return best
}

// weekEnd is the first day on or after t that falls on anchor
func weekEnd(t time.Time, anchor time.Weekday) time.Time {
	ahead := (int(anchor) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, ahead)
}
