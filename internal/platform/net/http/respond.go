// Package http provides the JSON envelope, handler adapters and server wiring
package http

import (
	stdhttp "net/http"

	perr "epimetrics/internal/platform/errors"
	pnet "epimetrics/internal/platform/net"

	"github.com/goccy/go-json"
)

// Envelope is the response body for every endpoint
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data"`
	Metadata   any            `json:"metadata,omitempty"`
}

// Payload lets a handler result put its provenance next to data rather than inside it
type Payload interface {
	Payload() (data any, metadata any)
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is a return-style handler result
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	env := Envelope{RequestID: pnet.RequestID(r.Context())}

	switch body := resp.Body.(type) {
	case error:
		status = perr.HTTPStatus(body)
		wr := perr.WireFrom(body)
		env.Code, env.Error, env.Field = wr.Code, wr.Message, wr.Field
	case Payload:
		env.Data, env.Metadata = body.Payload()
	default:
		env.Data = body
	}
	env.StatusCode = status
	env.Status = stdhttp.StatusText(status)
	JSON(w, status, env)
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error returns a response whose status comes from the error code
func Error(err error) Response { return Response{Body: err} }
