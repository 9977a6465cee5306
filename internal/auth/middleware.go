package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Middleware wraps an HTTP handler with the authentication gate. Denials are
// translated for the transport: throttled clients get 429 with a Retry-After
// header, everything else gets 401. Allowed requests pass through untouched.
func Middleware(gate *Gate, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := gate.Authenticate(r)
		if decision.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		status := http.StatusUnauthorized
		if decision.Throttled {
			status = http.StatusTooManyRequests
			// Round up so a client that waits exactly this long is clear of
			// the window.
			seconds := int(decision.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": decision.Reason,
		})
	})
}
