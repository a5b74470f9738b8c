package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/appgenerator/waitlist-service/pkg/utils"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					log.Error().
						Interface("recover", rvr).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("ip", r.RemoteAddr).
						Bytes("stack", debug.Stack()).
						Msg("Panic recovered")

					utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
