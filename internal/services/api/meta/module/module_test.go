package module

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	modkit "epimetrics/internal/modkit"
	phttp "epimetrics/internal/platform/net/http"
	"epimetrics/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

// checks maps backend name to (configured, err)
type checks map[string]error

func (c checks) Check(_ context.Context, name string) (bool, error) {
	err, ok := c[name]
	return ok, err
}

func serve(t *testing.T, deps modkit.Deps, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	New(deps).MountRoutes(r)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReady(t *testing.T) {
	rec := serve(t, modkit.Deps{Checks: checks{"pg": nil, "redis": nil}}, "/meta/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready = %d %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	testkit.MustContain(t, body, `"status":"degraded"`)
	testkit.MustContain(t, body, `{"name":"ch","status":"skipped"}`)

	rec = serve(t, modkit.Deps{Checks: checks{"pg": errors.New("connection refused")}}, "/meta/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with pg down = %d", rec.Code)
	}
	testkit.MustContain(t, rec.Body.String(), "not ready: pg")
}

func TestHealthVersionService(t *testing.T) {
	for _, path := range []string{"/meta/health", "/meta/version", "/meta/service"} {
		rec := serve(t, modkit.Deps{}, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s = %d", path, rec.Code)
		}
		testkit.MustContain(t, rec.Body.String(), "epimetrics-api")
	}
}
