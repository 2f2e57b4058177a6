package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "epimetrics/internal/platform/errors"
	pnet "epimetrics/internal/platform/net"
	phttp "epimetrics/internal/platform/net/http"

	"github.com/goccy/go-json"
)

type withMeta struct {
	rows []int
	meta map[string]string
}

func (w withMeta) Payload() (any, any) { return w.rows, w.meta }

func serve(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	method := http.MethodGet
	if body != "" {
		method = http.MethodPost
	}
	req := httptest.NewRequest(method, "/x", strings.NewReader(body))
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-1"))
	rec := httptest.NewRecorder()
	h(rec, req)
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestHandleOK(t *testing.T) {
	rec, env := serve(t, phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.OK(map[string]int{"n": 1})
	}), "")
	if rec.Code != http.StatusOK || env.StatusCode != 200 || env.RequestID != "rid-1" {
		t.Fatalf("bad envelope: %d %+v", rec.Code, env)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestHandlePayloadSplitsMetadata(t *testing.T) {
	_, env := serve(t, phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.OK(withMeta{rows: []int{1, 2}, meta: map[string]string{"period_type": "weekly"}})
	}), "")
	data, _ := env.Data.([]any)
	meta, _ := env.Metadata.(map[string]any)
	if len(data) != 2 || meta["period_type"] != "weekly" {
		t.Fatalf("payload not split: %+v", env)
	}
}

func TestHandleErrorMapping(t *testing.T) {
	rec, env := serve(t, phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Error(perr.NotFoundf("survey %q not found", "s9"))
	}), "")
	if rec.Code != http.StatusNotFound || env.Code != perr.ErrorCodeNotFound || env.Error == "" {
		t.Fatalf("bad error envelope: %d %+v", rec.Code, env)
	}

	rec, env = serve(t, phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Error(errors.New("boom"))
	}), "")
	if rec.Code != http.StatusInternalServerError || env.Error != "boom" {
		t.Fatalf("foreign error: %d %+v", rec.Code, env)
	}
}

type in struct {
	N int `json:"n" validate:"min=1"`
}

func TestJSONHandler(t *testing.T) {
	h := phttp.JSONHandler(func(_ *http.Request, v in) (any, error) {
		return map[string]int{"doubled": v.N * 2}, nil
	})
	rec, env := serve(t, h, `{"n":7}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"doubled":14`) {
		t.Fatalf("success path: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = serve(t, h, `{"n":0}`)
	if rec.Code != http.StatusBadRequest || env.Field != "n" {
		t.Fatalf("validation path: %d %+v", rec.Code, env)
	}
}

func TestNoBodyHandler(t *testing.T) {
	rec, _ := serve(t, phttp.NoBodyHandler(func(*http.Request) (any, error) {
		return nil, perr.InvalidArgf("bad")
	}), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}
