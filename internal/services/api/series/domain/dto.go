// Package domain holds DTOs for series http and service contracts
package domain

import (
	"bytes"
	"time"

	"epimetrics/internal/core/timeseries"
	perr "epimetrics/internal/platform/errors"
	pstr "epimetrics/internal/platform/strings"
	ptime "epimetrics/internal/platform/time"

	"github.com/goccy/go-json"
)

// Locations accepts a single JSON string or an array of strings and is always a slice after decoding
type Locations []string

// UnmarshalJSON decodes "Dublin" or ["Dublin","Cork"]; entries are trimmed and NFC folded
func (l *Locations) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*l = pstr.Labels([]string{one})
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return perr.WithField(perr.JSONErrf("location must be a string or an array of strings"), "location")
	}
	*l = pstr.Labels(many)
	return nil
}

// Interval values for the display interval
const (
	IntervalAll   = timeseries.IntervalAll
	IntervalRange = "range"
)

// SeriesQuery is the common request shape for every series endpoint
type SeriesQuery struct {
	Dataset     string    `json:"dataset" validate:"required,oneof=cases deaths contacts survey_answers social_media" example:"cases"`
	Location    Locations `json:"location" validate:"required,min=1,max=50,dive,required,max=120" swaggertype:"array,string" example:"Dublin"`
	StartDate   string    `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2021-01-01"`
	EndDate     string    `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2021-03-31"`
	Split       string    `json:"split,omitempty" validate:"omitempty,max=40" example:"age_group"`
	Category    []string  `json:"category,omitempty" validate:"omitempty,max=20,dive,required,max=120"`
	Subcategory []string  `json:"subcategory,omitempty" validate:"omitempty,max=20,dive,required,max=120"`
	Interval    string    `json:"interval,omitempty" validate:"omitempty,oneof=all range" example:"range"`
	WeekAnchor  string    `json:"week_anchor,omitempty" validate:"omitempty,oneof=sunday monday tuesday wednesday thursday friday saturday data" example:"sunday"`
}

// Bounds parses the optional dates; validation already guarantees the layout
func (q SeriesQuery) Bounds() (start, end *time.Time, err error) {
	parse := func(s, field string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		d, err := ptime.ParseDay(s)
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("%s: %v", field, err), field)
		}
		return &d, nil
	}
	if start, err = parse(q.StartDate, "start_date"); err != nil {
		return nil, nil, err
	}
	if end, err = parse(q.EndDate, "end_date"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// ViewsQuery asks for derived views over the daily series; no views means all of them
type ViewsQuery struct {
	SeriesQuery
	Views []string `json:"views,omitempty" validate:"omitempty,dive,oneof=daily weekly cumulative proportional_increase avg7 avg14 avg2w percentage"`
	Skip  int      `json:"skip,omitempty" validate:"omitempty,min=0,max=31" example:"1"`
}

// SocialQuery drives the social media panel; emotion and topic series are opt-in
type SocialQuery struct {
	Location       Locations `json:"location" validate:"required,min=1,max=50,dive,required,max=120" swaggertype:"array,string"`
	StartDate      string    `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string    `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Category       []string  `json:"category,omitempty" validate:"omitempty,max=20,dive,required,max=120"`
	IncludeEmotion bool      `json:"include_emotion,omitempty"`
	IncludeTopics  bool      `json:"include_topics,omitempty"`
}

// Series returns the equivalent SeriesQuery for the social_media dataset
func (q SocialQuery) Series(split string) SeriesQuery {
	return SeriesQuery{
		Dataset:   DatasetSocialMedia,
		Location:  q.Location,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Split:     split,
		Category:  q.Category,
	}
}

// SurveyQuery asks for the answer breakdown of one survey
type SurveyQuery struct {
	SurveyID  string    `json:"survey_id" validate:"required,max=64" example:"vaccine-intent-2021"`
	Location  Locations `json:"location" validate:"required,min=1,max=50,dive,required,max=120" swaggertype:"array,string"`
	StartDate string    `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string    `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Interval  string    `json:"interval,omitempty" validate:"omitempty,oneof=all range"`
}

// Series returns the equivalent SeriesQuery split by answer
func (q SurveyQuery) Series() SeriesQuery {
	return SeriesQuery{
		Dataset:   DatasetSurveyAnswers,
		Location:  q.Location,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Split:     SplitAnswer,
		Interval:  q.Interval,
	}
}

// Survey is a questionnaire whose answers are a split dimension
type Survey struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// Meta is the response metadata block
type Meta struct {
	Sources    []timeseries.Source `json:"sources"`
	LastUpdate time.Time           `json:"last_update"`
	PeriodType string              `json:"period_type,omitempty"`
	Weekday    string              `json:"weekday,omitempty"`
	Survey     *Survey             `json:"survey,omitempty"`
}

// MarshalJSON renders LastUpdate in UTC; cached copies decode into the local zone
func (m Meta) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Sources    []timeseries.Source `json:"sources"`
		LastUpdate time.Time           `json:"last_update"`
		PeriodType string              `json:"period_type,omitempty"`
		Weekday    string              `json:"weekday,omitempty"`
		Survey     *Survey             `json:"survey,omitempty"`
	}{m.Sources, m.LastUpdate.UTC(), m.PeriodType, m.Weekday, m.Survey})
}

// MetaFrom lifts merged metadata into the response block
func MetaFrom(m timeseries.Metadata) Meta {
	return Meta{Sources: m.Sources, LastUpdate: m.LastUpdate}
}

// DailyResult is the gap-filled daily series
type DailyResult struct {
	Records []timeseries.DailyRecord
	Meta    Meta
}

// Payload splits data from metadata for the envelope
func (r DailyResult) Payload() (any, any) { return r.Records, r.Meta }

// ViewsResult carries the derived views and, for split series, the per-key uptake
type ViewsResult struct {
	Views  []timeseries.SeriesView
	Uptake []timeseries.SplitValue
	Meta   Meta
}

// Payload splits data from metadata for the envelope
func (r ViewsResult) Payload() (any, any) {
	return struct {
		Views  []timeseries.SeriesView `json:"views"`
		Uptake []timeseries.SplitValue `json:"uptake,omitempty"`
	}{r.Views, r.Uptake}, r.Meta
}

// LocationsResult is the daily series broken down per location
type LocationsResult struct {
	Records []timeseries.LocationRecord
	Meta    Meta
}

// Payload splits data from metadata for the envelope
func (r LocationsResult) Payload() (any, any) { return r.Records, r.Meta }

// SocialResult holds each social series under its own name
type SocialResult struct {
	Sentiment []timeseries.DailyRecord
	Emotion   []timeseries.DailyRecord
	Volume    []timeseries.DailyRecord
	Topics    []timeseries.DailyRecord
	Meta      Meta
}

// Payload splits data from metadata for the envelope
func (r SocialResult) Payload() (any, any) {
	return struct {
		Sentiment []timeseries.DailyRecord `json:"sentiment"`
		Emotion   []timeseries.DailyRecord `json:"emotion,omitempty"`
		Volume    []timeseries.DailyRecord `json:"volume"`
		Topics    []timeseries.DailyRecord `json:"topics,omitempty"`
	}{r.Sentiment, r.Emotion, r.Volume, r.Topics}, r.Meta
}

// SurveyResult is the answer breakdown and per answer uptake
type SurveyResult struct {
	Records []timeseries.DailyRecord
	Uptake  []timeseries.SplitValue
	Meta    Meta
}

// Payload splits data from metadata for the envelope
func (r SurveyResult) Payload() (any, any) {
	return struct {
		Records []timeseries.DailyRecord `json:"records"`
		Uptake  []timeseries.SplitValue  `json:"uptake"`
	}{r.Records, r.Uptake}, r.Meta
}

// DatasetInfo describes a dataset for clients building requests
type DatasetInfo struct {
	Name   string   `json:"name"`
	Splits []string `json:"splits"`
	Labels []string `json:"labels,omitempty"`
}
