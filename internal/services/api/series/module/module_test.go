package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	modkit "epimetrics/internal/modkit"
	"epimetrics/internal/modkit/module"
	phttp "epimetrics/internal/platform/net/http"
	"epimetrics/internal/platform/store"
	"epimetrics/internal/platform/testkit"
	"epimetrics/internal/services/api/series/domain"
	"epimetrics/internal/services/api/series/repo"

	"github.com/go-chi/chi/v5"
)

// emptyCH answers every query with no rows
type emptyCH struct{}

type noRows struct{}

func (noRows) Next() bool        { return false }
func (noRows) Scan(...any) error { return nil }
func (noRows) Err() error        { return nil }
func (noRows) Close()            {}
func (noRows) Columns() []string { return nil }

func (emptyCH) Insert(context.Context, string, [][]any) error { return nil }
func (emptyCH) Query(context.Context, string, ...any) (store.Rows, error) {
	return noRows{}, nil
}
func (emptyCH) Ping(context.Context) error { return nil }
func (emptyCH) Close() error               { return nil }

func newRouter(t *testing.T) (phttp.Router, modkit.Module) {
	t.Helper()
	m := NewWithOptions(modkit.Deps{CH: emptyCH{}}, Options{Backend: repo.BackendCH, Anchor: time.Monday})
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	return r, m
}

func do(r phttp.Router, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestSeriesRoutes(t *testing.T) {
	r, m := newRouter(t)
	if m.Name() != "series" {
		t.Fatalf("name = %s", m.Name())
	}

	rec := do(r, http.MethodPost, "/series/daily",
		`{"dataset":"cases","location":"Dublin","start_date":"2021-01-01","end_date":"2021-01-03","split":"gender"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily = %d %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	testkit.MustContain(t, body, `"date":"2021-01-03"`)
	testkit.MustContain(t, body, `"key":"M"`)
	testkit.MustContain(t, body, `"name":"unspecified"`)

	rec = do(r, http.MethodPost, "/series/views", `{"dataset":"deaths","location":["Dublin","Cork"],"views":["avg7"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("views = %d %s", rec.Code, rec.Body.String())
	}
	testkit.MustContain(t, rec.Body.String(), `"weekday":"Monday"`)

	rec = do(r, http.MethodGet, "/series/datasets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("datasets = %d", rec.Code)
	}
	testkit.MustContain(t, rec.Body.String(), `"name":"social_media"`)
}

func TestSeriesRouteErrors(t *testing.T) {
	r, _ := newRouter(t)
	cases := []struct {
		name, path, body string
		want             int
	}{
		{"bad date", "/series/daily", `{"dataset":"cases","location":"Dublin","start_date":"yesterday"}`, http.StatusBadRequest},
		{"unknown field", "/series/daily", `{"dataset":"cases","location":"Dublin","bogus":1}`, http.StatusBadRequest},
		{"bad split", "/series/daily", `{"dataset":"contacts","location":"Dublin","split":"emotion"}`, http.StatusUnprocessableEntity},
		{"inverted", "/series/locations", `{"dataset":"cases","location":"Dublin","start_date":"2021-02-01","end_date":"2021-01-01"}`, http.StatusUnprocessableEntity},
		{"missing survey", "/series/surveys/answers", `{"survey_id":"nope","location":"Dublin"}`, http.StatusNotFound},
	}
	for _, c := range cases {
		rec := do(r, http.MethodPost, c.path, c.body)
		if rec.Code != c.want {
			t.Fatalf("%s: status = %d, want %d (%s)", c.name, rec.Code, c.want, rec.Body.String())
		}
	}
}

func TestPortsAndBackendSelection(t *testing.T) {
	_, m := newRouter(t)
	p, ok := module.PortsOf[domain.ServicePort](m)
	if !ok {
		t.Fatalf("ports do not implement ServicePort")
	}
	if ds, err := p.Datasets(context.Background()); err != nil || len(ds) != 5 {
		t.Fatalf("Datasets = %v, %v", ds, err)
	}

	testkit.MustPanic(t, func() { NewWithOptions(modkit.Deps{}, Options{Backend: repo.BackendCH}) })
	testkit.MustPanic(t, func() { NewWithOptions(modkit.Deps{}, Options{Backend: repo.BackendPG}) })
}

func TestFromConfig(t *testing.T) {
	t.Setenv("SERIES_BACKEND", "CH")
	t.Setenv("SERIES_WEEK_ANCHOR", "saturday")
	o := FromConfig(modkit.Deps{}.Cfg)
	if o.Backend != repo.BackendCH || o.Anchor != time.Saturday {
		t.Fatalf("options = %+v", o)
	}
}
