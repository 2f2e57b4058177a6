package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "epimetrics/internal/platform/errors"
	"epimetrics/internal/platform/logger"
	pnet "epimetrics/internal/platform/net"
	phttp "epimetrics/internal/platform/net/http"
)

// RecoverJSON turns a panic into the standard 500 envelope and logs the stack
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			wr := perr.WireFrom(perr.PanicErrf("panic recovered"))
			phttp.JSON(w, stdhttp.StatusInternalServerError, phttp.Envelope{
				StatusCode: stdhttp.StatusInternalServerError,
				Status:     stdhttp.StatusText(stdhttp.StatusInternalServerError),
				Code:       wr.Code,
				Error:      wr.Message,
				RequestID:  reqID,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
