package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"epimetrics/internal/platform/net/middleware"
)

// StackOptions tunes the API middleware stack
type StackOptions struct {
	AllowedOrigins []string
	Timeout        time.Duration
	MaxInFlight    int
}

// CommonStack returns the baseline middleware for the versioned API
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	mw := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{}),
		middleware.RecoverJSON,
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.AllowedOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
	if o.MaxInFlight > 0 {
		mw = append(mw, middleware.Throttle(o.MaxInFlight))
	}
	return mw
}
