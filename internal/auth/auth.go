// Package auth implements the shared-secret authentication contract:
// every request must carry the configured key in X-API-Key.
package auth

import (
	"crypto/subtle"
	"net/http"

	"guild-gateway/internal/api"
	"guild-gateway/internal/common/logging"
)

// HeaderName is the header carrying the shared secret
const HeaderName = "X-API-Key"

// RequireAPIKey rejects requests whose X-API-Key header does not match
// apiKey exactly. Rejections never reach the pipeline and are logged at
// most as a warning.
func RequireAPIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(HeaderName)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
				logging.Warn("Rejected unauthenticated request",
					logging.String("path", r.URL.Path),
					logging.String("remote_addr", r.RemoteAddr),
				)
				api.Write(w, api.Failure(http.StatusUnauthorized, "Unauthorized"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
