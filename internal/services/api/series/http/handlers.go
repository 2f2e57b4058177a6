// Package http provides http transport for series
package http

import (
	stdhttp "net/http"

	"epimetrics/internal/modkit/httpkit"
	"epimetrics/internal/services/api/series/domain"
	svc "epimetrics/internal/services/api/series/service"
)

// Register mounts series endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// gap filled daily series
	httpkit.PostJSON[domain.SeriesQuery](r, "/daily", h.daily)

	// weekly, cumulative, rolling and percentage views
	httpkit.PostJSON[domain.ViewsQuery](r, "/views", h.views)

	// per location breakdown
	httpkit.PostJSON[domain.SeriesQuery](r, "/locations", h.locations)

	// sentiment, emotion, volume and topics in one call
	httpkit.PostJSON[domain.SocialQuery](r, "/social", h.social)

	httpkit.PostJSON[domain.SurveyQuery](r, "/surveys/answers", h.surveyAnswers)

	httpkit.GetJSON(r, "/datasets", h.datasets)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /series/daily Series seriesDaily
// @Summary Gap filled daily series
// @Tags Series
// @Accept json
// @Produce json
// @Param payload body domain.SeriesQuery true "Query"
// @Success 200 {object} httpkit.Envelope "data is an array of daily records"
// @Failure 400 {object} httpkit.Envelope
// @Failure 422 {object} httpkit.Envelope
// @Router /series/daily [post]
func (h *handlers) daily(r *stdhttp.Request, in domain.SeriesQuery) (any, error) {
	return h.svc.Daily(r.Context(), in)
}

// swagger:route POST /series/views Series seriesViews
// @Summary Derived views over the daily series
// @Tags Series
// @Accept json
// @Produce json
// @Param payload body domain.ViewsQuery true "Query"
// @Success 200 {object} httpkit.Envelope "data holds views and uptake"
// @Router /series/views [post]
func (h *handlers) views(r *stdhttp.Request, in domain.ViewsQuery) (any, error) {
	return h.svc.Views(r.Context(), in)
}

// swagger:route POST /series/locations Series seriesLocations
// @Summary Daily series per location
// @Tags Series
// @Accept json
// @Produce json
// @Param payload body domain.SeriesQuery true "Query"
// @Success 200 {object} httpkit.Envelope "data is an array of location records"
// @Router /series/locations [post]
func (h *handlers) locations(r *stdhttp.Request, in domain.SeriesQuery) (any, error) {
	return h.svc.Locations(r.Context(), in)
}

// swagger:route POST /series/social Series seriesSocial
// @Summary Social media analysis series
// @Tags Series
// @Accept json
// @Produce json
// @Param payload body domain.SocialQuery true "Query"
// @Success 200 {object} httpkit.Envelope "data holds sentiment, emotion, volume and topics"
// @Router /series/social [post]
func (h *handlers) social(r *stdhttp.Request, in domain.SocialQuery) (any, error) {
	return h.svc.Social(r.Context(), in)
}

// swagger:route POST /series/surveys/answers Series seriesSurveyAnswers
// @Summary Answer breakdown of one survey
// @Tags Series
// @Accept json
// @Produce json
// @Param payload body domain.SurveyQuery true "Query"
// @Success 200 {object} httpkit.Envelope "data holds records and uptake"
// @Failure 404 {object} httpkit.Envelope "unknown survey"
// @Router /series/surveys/answers [post]
func (h *handlers) surveyAnswers(r *stdhttp.Request, in domain.SurveyQuery) (any, error) {
	return h.svc.SurveyAnswers(r.Context(), in)
}

// swagger:route GET /series/datasets Series seriesDatasets
// @Summary Dataset catalogue
// @Tags Series
// @Produce json
// @Success 200 {array} domain.DatasetInfo "ok"
// @Router /series/datasets [get]
func (h *handlers) datasets(r *stdhttp.Request) (any, error) {
	return h.svc.Datasets(r.Context())
}
