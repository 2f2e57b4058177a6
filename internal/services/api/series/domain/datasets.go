package domain

import (
	"sort"

	perr "epimetrics/internal/platform/errors"
)

// Dataset names
const (
	DatasetCases         = "cases"
	DatasetDeaths        = "deaths"
	DatasetContacts      = "contacts"
	DatasetSurveyAnswers = "survey_answers"
	DatasetSocialMedia   = "social_media"
)

// Split dimensions
const (
	SplitAgeGroup  = "age_group"
	SplitGender    = "gender"
	SplitSentiment = "sentiment"
	SplitEmotion   = "emotion"
	SplitTopic     = "topic"
	SplitAnswer    = "answer"

	// SplitLocation groups by location for the locations view; it is not requestable as a split
	SplitLocation = "location"
)

// Taxonomy is the preferred key order and palette of a split dimension
type Taxonomy struct {
	Keys   []string
	Colors map[string]string
}

// Dataset is the static description of one dataset: which splits it allows, mapped to their
// column, and which label columns ride along with each day
type Dataset struct {
	Name   string
	Splits map[string]string
	Labels []string
}

// Column maps a split dimension to its whitelisted column
func (d Dataset) Column(split string) (string, error) {
	col, ok := d.Splits[split]
	if !ok {
		return "", perr.WithField(perr.InvalidArgf("dataset %q cannot be split by %q", d.Name, split), "split")
	}
	return col, nil
}

// Info describes the dataset for the catalogue endpoint
func (d Dataset) Info() DatasetInfo {
	splits := make([]string, 0, len(d.Splits))
	for s := range d.Splits {
		splits = append(splits, s)
	}
	sort.Strings(splits)
	return DatasetInfo{Name: d.Name, Splits: splits, Labels: d.Labels}
}

var demographic = map[string]string{SplitAgeGroup: "age_group", SplitGender: "gender"}

var registry = map[string]Dataset{
	DatasetCases:    {Name: DatasetCases, Splits: demographic, Labels: []string{"policy"}},
	DatasetDeaths:   {Name: DatasetDeaths, Splits: demographic},
	DatasetContacts: {Name: DatasetContacts, Splits: map[string]string{SplitAgeGroup: "age_group"}},
	DatasetSurveyAnswers: {
		Name:   DatasetSurveyAnswers,
		Splits: map[string]string{SplitAnswer: "answer", SplitAgeGroup: "age_group", SplitGender: "gender"},
	},
	DatasetSocialMedia: {
		Name:   DatasetSocialMedia,
		Splits: map[string]string{SplitSentiment: "sentiment", SplitEmotion: "emotion", SplitTopic: "topic"},
	},
}

var taxonomies = map[string]Taxonomy{
	SplitAgeGroup: {
		Keys:   []string{"0-17", "18-34", "35-64", "65+"},
		Colors: map[string]string{"0-17": "#8dd3c7", "18-34": "#80b1d3", "35-64": "#bebada", "65+": "#fb8072"},
	},
	SplitGender: {
		Keys:   []string{"F", "M"},
		Colors: map[string]string{"F": "#e7298a", "M": "#1b9e77"},
	},
	SplitSentiment: {
		Keys:   []string{"positive", "neutral", "negative"},
		Colors: map[string]string{"positive": "#4daf4a", "neutral": "#999999", "negative": "#e41a1c"},
	},
	SplitEmotion: {
		Keys:   []string{"anger", "fear", "joy", "sadness", "surprise", "trust"},
		Colors: map[string]string{"anger": "#d7191c", "fear": "#7b3294", "joy": "#fdae61", "sadness": "#2c7bb6", "surprise": "#abd9e9", "trust": "#1a9641"},
	},
}

// Lookup finds a dataset by name
func Lookup(name string) (Dataset, error) {
	d, ok := registry[name]
	if !ok {
		return Dataset{}, perr.WithField(perr.NotFoundf("unknown dataset %q", name), "dataset")
	}
	return d, nil
}

// TaxonomyOf returns the taxonomy of a split dimension; dimensions without one get a zero Taxonomy
func TaxonomyOf(split string) Taxonomy { return taxonomies[split] }

// Catalogue lists every dataset sorted by name
func Catalogue() []DatasetInfo {
	out := make([]DatasetInfo, 0, len(registry))
	for _, d := range registry {
		out = append(out, d.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
