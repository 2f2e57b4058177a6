package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"epimetrics/internal/modkit/httpkit"
	phttp "epimetrics/internal/platform/net/http"
	"epimetrics/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestBuildDefaultsAndPrefix(t *testing.T) {
	b := Build(WithName("series"), WithPrefix(" series/ "))
	if b.Name != "series" || b.Prefix != "/series" {
		t.Fatalf("built = %+v", b)
	}
	if b.Subrouter == nil || b.Register == nil {
		t.Fatalf("hooks must default to no-ops")
	}
	testkit.MustPanic(t, func() { Build(WithPrefix("/")) })
}

func TestBuiltMount(t *testing.T) {
	tagged := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "series")
			next.ServeHTTP(w, r)
		})
	}
	b := Build(
		WithPrefix("/series"),
		WithMiddlewares(tagged),
		WithRegister(func(r httpkit.Router) {
			httpkit.GetJSON(r, "/datasets", func(*http.Request) (any, error) { return []string{"cases"}, nil })
		}),
	)
	r := phttp.AdaptChi(chi.NewRouter())
	b.Mount(r)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/series/datasets", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Module") != "series" {
		t.Fatalf("code=%d header=%q body=%s", rec.Code, rec.Header().Get("X-Module"), rec.Body.String())
	}
	testkit.MustContain(t, rec.Body.String(), `"cases"`)
}
