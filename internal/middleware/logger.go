package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger writes one access log line per request. Server errors are
// logged at error level and client errors at warn.
func RequestLogger(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				event := log.Info()
				switch {
				case status >= http.StatusInternalServerError:
					event = log.Error()
				case status >= http.StatusBadRequest:
					event = log.Warn()
				}

				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("query", r.URL.RawQuery).
					Str("ip", r.RemoteAddr).
					Str("user_agent", r.UserAgent()).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// ContextLogger attaches log, tagged with the request ID, to the request
// context for zerolog.Ctx.
func ContextLogger(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if middleware.GetReqID(ctx) == "" {
				ctx = context.WithValue(ctx, middleware.RequestIDKey, strconv.FormatUint(middleware.NextRequestID(), 10))
			}

			reqLog := log.With().Str("request_id", middleware.GetReqID(ctx)).Logger()
			next.ServeHTTP(w, r.WithContext(reqLog.WithContext(ctx)))
		})
	}
}
