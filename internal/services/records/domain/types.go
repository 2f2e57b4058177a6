// Package domain holds the record shapes the loader reads and writes
package domain

import (
	"time"
)

// Record is one line of a loader file: a count for one dataset, location and day,
// optionally tagged with the dimensions the series endpoints split by
type Record struct {
	ID          string    `json:"id,omitempty" validate:"omitempty,uuid"`
	Dataset     string    `json:"dataset" validate:"required,max=64"`
	Location    string    `json:"location" validate:"required,max=120"`
	Date        string    `json:"date" validate:"required,datetime=2006-01-02"`
	Total       float64   `json:"total" validate:"gte=0"`
	Category    string    `json:"category,omitempty" validate:"max=120"`
	Subcategory string    `json:"subcategory,omitempty" validate:"max=120"`
	AgeGroup    string    `json:"age_group,omitempty" validate:"max=32"`
	Gender      string    `json:"gender,omitempty" validate:"max=32"`
	Sentiment   string    `json:"sentiment,omitempty" validate:"max=32"`
	Emotion     string    `json:"emotion,omitempty" validate:"max=32"`
	Topic       string    `json:"topic,omitempty" validate:"max=120"`
	Answer      string    `json:"answer,omitempty" validate:"max=120"`
	SurveyID    string    `json:"survey_id,omitempty" validate:"max=64"`
	Policy      string    `json:"policy,omitempty" validate:"max=240"`
	Source      string    `json:"source,omitempty" validate:"max=120"`
	SourceDate  string    `json:"source_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Survey is a questionnaire the survey_answers dataset references by id
type Survey struct {
	ID       string   `json:"id" validate:"required,max=64"`
	Title    string   `json:"title" validate:"required,max=240"`
	Question string   `json:"question" validate:"required"`
	Answers  []string `json:"answers" validate:"required,min=1,dive,required,max=120"`
}

// Line kinds; a line without "kind" is a record
const (
	KindRecord = "record"
	KindSurvey = "survey"
)

// Line is one decoded input line; exactly one of Record and Survey is set
type Line struct {
	No     int
	Record *Record
	Survey *Survey
}

// LineError is a rejected input line
type LineError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Report summarizes one load
type Report struct {
	Lines    int            `json:"lines"`
	Records  int            `json:"records"`
	Surveys  int            `json:"surveys"`
	Inserted int            `json:"inserted"`
	Mirrored int            `json:"mirrored"`
	Datasets map[string]int `json:"datasets"`
	Errors   []LineError    `json:"errors,omitempty"`
	DryRun   bool           `json:"dry_run"`
}

// LoadOptions narrow one load
type LoadOptions struct {
	// Dataset, when set, is applied to records that omit it and must match those that don't
	Dataset string

	// DryRun validates the file without writing
	DryRun bool
}
