package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Commvault/commvault-mcp-server/internal/secrets"
	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

// Decision is the outcome of authenticating one request. Reason is only
// populated for denials and never contains secret material.
type Decision struct {
	Allowed bool
	Reason  string

	// Throttled is set when the denial is a rate-limit rejection; the
	// hosting pipeline maps it to a retry-after style status instead of a
	// plain unauthorized.
	Throttled  bool
	RetryAfter time.Duration
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Gate is the authentication entry point for the HTTP transports. It owns no
// mutable state itself; the limiter carries the per-client records and the
// secret store supplies the server secret on demand.
type Gate struct {
	identifier *ClientIdentifier
	limiter    *FailureLimiter
	store      secrets.Store

	// now is injected for tests; time.Now in production.
	now func() time.Time
}

// NewGate builds a Gate from its collaborators.
func NewGate(identifier *ClientIdentifier, limiter *FailureLimiter, store secrets.Store) *Gate {
	return &Gate{
		identifier: identifier,
		limiter:    limiter,
		store:      store,
		now:        time.Now,
	}
}

// Authenticate decides whether the request presents a valid credential. It
// never panics and never propagates errors past this boundary; every failure
// mode is a denial with a caller-safe reason.
//
// The limiter's lock is only held inside the individual limiter calls, never
// across the secret store read or the comparison.
func (g *Gate) Authenticate(r *http.Request) Decision {
	clientIP, err := g.identifier.Resolve(r.RemoteAddr, r.Header)
	if err != nil {
		logging.Error("AuthGate", err, "Authentication validation failed: unable to determine client IP address")
		return deny("Unable to determine client identity. Request rejected.")
	}

	if throttled, remaining := g.limiter.CheckThrottled(clientIP); throttled {
		logging.Warn("AuthGate", "Authentication attempt from %s rejected: rate limited (wait %.1fs)",
			clientIP, remaining.Seconds())
		d := deny(fmt.Sprintf("Too many attempts. Please try again in %.1f seconds.", remaining.Seconds()))
		d.Throttled = true
		d.RetryAfter = remaining
		return d
	}

	// No Authorization header means no guess was made, so this denial does
	// not count against the rate limit. A present header with an empty
	// credential (for example "Bearer " alone) is still a guess and falls
	// through to the comparison.
	header := r.Header.Get("Authorization")
	if header == "" {
		logging.Warn("AuthGate", "Authentication validation failed: no Authorization header from %s", clientIP)
		return deny("Missing credential in request.")
	}
	credential := extractCredential(header)

	secret, err := secrets.LoadServerSecret(g.store)
	if err != nil {
		// Operational misconfiguration, not attributable to the caller and
		// never rate limited.
		logging.Error("AuthGate", err, "Authentication validation failed: server secret unavailable")
		switch {
		case errors.Is(err, secrets.ErrSecretMissing):
			return deny("Server secrets missing. Please check server configuration.")
		case errors.Is(err, secrets.ErrExpiryMissing), errors.Is(err, secrets.ErrExpiryMalformed):
			return deny("Server secret expiry is not set correctly. Please rerun the setup to regenerate the server secret.")
		default:
			return deny("Server misconfigured. Please check server configuration.")
		}
	}

	if secret.Expired(g.now()) {
		logging.Error("AuthGate", nil, "Authentication validation failed: server secret expired on %s",
			secret.Expiry.Format(time.DateTime))
		return deny("Server secret has expired. Please regenerate the server secret using the setup command.")
	}

	if subtle.ConstantTimeCompare([]byte(credential), []byte(secret.Value)) != 1 {
		logging.Warn("AuthGate", "Authentication validation failed: secret mismatch from %s", clientIP)
		g.limiter.RecordFailure(clientIP)
		return deny("Invalid credential.")
	}

	g.limiter.ResetSuccess(clientIP)
	return allow()
}

// extractCredential pulls the presented credential out of an Authorization
// header value. A "Bearer " scheme prefix is stripped; any other value is
// treated as the raw credential.
func extractCredential(header string) string {
	if header == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return rest
	}
	return header
}
