// Package timeseries turns sparse grouped rows into complete per-day series and the views derived from them.
// Everything here is pure: inputs are never mutated and outputs never alias inputs.
package timeseries

import (
	"time"

	perr "epimetrics/internal/platform/errors"
	ptime "epimetrics/internal/platform/time"

	"github.com/goccy/go-json"
)

// View names
const (
	ViewDaily                = "daily"
	ViewWeekly               = "weekly"
	ViewCumulative           = "cumulative"
	ViewProportionalIncrease = "proportional_increase"
	ViewAverage7             = "avg7"
	ViewAverage14            = "avg14"
	ViewTwoWeekAverage       = "avg2w"
	ViewPercentage           = "percentage"
)

// ErrInvertedInterval is returned when a start date falls after the end date
var ErrInvertedInterval = perr.New(perr.ErrorCodeInvalidArgument, "start_date is after end_date")

// DateInterval is an inclusive range of UTC calendar days
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// Days is the number of calendar days covered, End-Start+1
func (d DateInterval) Days() int {
	return ptime.DaysBetween(d.Start, d.End) + 1
}

// Contains reports whether day t falls inside the interval
func (d DateInterval) Contains(t time.Time) bool {
	day := ptime.Day(t)
	return !day.Before(d.Start) && !day.After(d.End)
}

// RawRow is one aggregator group: a day, an optional split key and the summed total
type RawRow struct {
	Date     time.Time
	Total    float64
	SplitKey string
	Labels   map[string]string
}

// SplitValue is one split key's share of a day
type SplitValue struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Color string  `json:"color,omitempty"`
}

// DailyRecord is one calendar day; when Split is set its totals sum to Total
type DailyRecord struct {
	Date   time.Time
	Total  float64
	Split  []SplitValue
	Labels map[string]string
}

// MarshalJSON renders the date as YYYY-MM-DD
func (r DailyRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string            `json:"date"`
		Total  float64           `json:"total"`
		Split  []SplitValue      `json:"split,omitempty"`
		Labels map[string]string `json:"labels,omitempty"`
	}{ptime.FormatDay(r.Date), r.Total, r.Split, r.Labels})
}

// LocationValue is one location's share of a day
type LocationValue struct {
	Location string  `json:"location"`
	Total    float64 `json:"total"`
}

// LocationRecord is one calendar day broken down by location
type LocationRecord struct {
	Date      time.Time
	Total     float64
	Locations []LocationValue
}

// MarshalJSON renders the date as YYYY-MM-DD
func (r LocationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date      string          `json:"date"`
		Total     float64         `json:"total"`
		Locations []LocationValue `json:"locations"`
	}{ptime.FormatDay(r.Date), r.Total, r.Locations})
}

// SplitSeries is one split key projected across a view's x axis
type SplitSeries struct {
	Key    string    `json:"key"`
	Color  string    `json:"color,omitempty"`
	Values []float64 `json:"values"`
}

// SeriesView is a named derivation of a daily series
type SeriesView struct {
	Name  string        `json:"name"`
	XAxis []string      `json:"x_axis"`
	YAxis []float64     `json:"y_axis"`
	Split []SplitSeries `json:"split,omitempty"`
}

// Source is the provenance of a set of rows
type Source struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// MarshalJSON renders the date in UTC whatever location the value was decoded into
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string    `json:"name"`
		Date time.Time `json:"date"`
	}{s.Name, s.Date.UTC()})
}

// Metadata travels next to data in every response
type Metadata struct {
	Sources    []Source  `json:"sources"`
	LastUpdate time.Time `json:"last_update"`
}

// MarshalJSON renders LastUpdate in UTC
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Sources    []Source  `json:"sources"`
		LastUpdate time.Time `json:"last_update"`
	}{m.Sources, m.LastUpdate.UTC()})
}
