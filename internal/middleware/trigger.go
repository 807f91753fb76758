package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/AdamBeresnev/tournament-bracket/internal/httputil"
)

const TriggerSecretHeader = "X-Trigger-Secret"

// RequireTriggerSecret guards the event trigger endpoints. An empty secret
// leaves them open, which is only meant for local development.
func RequireTriggerSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(TriggerSecretHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
				httputil.Unauthorized(w, "invalid trigger secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
