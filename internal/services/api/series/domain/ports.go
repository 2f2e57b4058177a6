package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Daily(ctx context.Context, in SeriesQuery) (DailyResult, error)
	Views(ctx context.Context, in ViewsQuery) (ViewsResult, error)
	Locations(ctx context.Context, in SeriesQuery) (LocationsResult, error)
	Social(ctx context.Context, in SocialQuery) (SocialResult, error)
	SurveyAnswers(ctx context.Context, in SurveyQuery) (SurveyResult, error)
	Datasets(ctx context.Context) ([]DatasetInfo, error)
}
