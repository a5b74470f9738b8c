package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/appgenerator/waitlist-service/pkg/utils"
	"github.com/rs/zerolog"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminAuth lets a request through only when its X-Admin-Token header equals
// token. With an empty token every request is refused.
func AdminAuth(token string, log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				log.Warn().Str("path", r.URL.Path).Msg("Admin request refused: no admin token configured")
				utils.WriteError(w, http.StatusForbidden, "Admin access is disabled")
				return
			}

			provided := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				log.Warn().
					Str("path", r.URL.Path).
					Str("ip", r.RemoteAddr).
					Msg("Admin request refused: bad token")
				utils.WriteError(w, http.StatusUnauthorized, "Invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
