package module

import (
	"context"

	"epimetrics/internal/services/api/series/domain"
	seriessvc "epimetrics/internal/services/api/series/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptSeriesPort struct{ svc seriessvc.Service }

var _ domain.ServicePort = adaptSeriesPort{}

func (a adaptSeriesPort) Daily(ctx context.Context, in domain.SeriesQuery) (domain.DailyResult, error) {
	return a.svc.Daily(ctx, in)
}

func (a adaptSeriesPort) Views(ctx context.Context, in domain.ViewsQuery) (domain.ViewsResult, error) {
	return a.svc.Views(ctx, in)
}

func (a adaptSeriesPort) Locations(ctx context.Context, in domain.SeriesQuery) (domain.LocationsResult, error) {
	return a.svc.Locations(ctx, in)
}

func (a adaptSeriesPort) Social(ctx context.Context, in domain.SocialQuery) (domain.SocialResult, error) {
	return a.svc.Social(ctx, in)
}

func (a adaptSeriesPort) SurveyAnswers(ctx context.Context, in domain.SurveyQuery) (domain.SurveyResult, error) {
	return a.svc.SurveyAnswers(ctx, in)
}

func (a adaptSeriesPort) Datasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	return a.svc.Datasets(ctx)
}
