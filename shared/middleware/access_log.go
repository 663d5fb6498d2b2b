package middleware

import (
	"net/http"
	"time"

	"github.com/itchan-dev/mboard/shared/logger"
	"github.com/itchan-dev/mboard/shared/middleware/metrics"
)

// AccessLog writes one line per request after it completes.
func AccessLog(next http.Handler) http.Handler {
	log := logger.Component("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := metrics.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"route", metrics.RoutePattern(r),
			"status", rec.StatusCode,
			"duration", time.Since(start),
			"request_id", GetRequestId(r.Context()),
		}
		switch {
		case rec.StatusCode >= 500:
			log.Error("request", attrs...)
		case rec.StatusCode >= 400:
			log.Warn("request", attrs...)
		default:
			log.Debug("request", attrs...)
		}
	})
}
