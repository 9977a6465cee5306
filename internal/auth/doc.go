// Package auth implements the request authentication gate for the Commvault
// MCP server's HTTP transports.
//
// Every inbound request passes through Gate.Authenticate, which decides
// whether the caller presents the valid shared server secret. The gate
// composes four pieces:
//
//   - TrustedProxies: the configured set of proxy addresses whose
//     X-Forwarded-For header is honored, parsed once at construction.
//   - ClientIdentifier: resolves the effective client IP from the transport
//     peer address and the forwarded header, resisting IP spoofing by
//     ignoring X-Forwarded-For from untrusted peers.
//   - FailureLimiter: per-client failure counters with exponential backoff,
//     the only mutable shared state, guarded by a single mutex.
//   - the secret store: supplies the current server secret and its expiry.
//
// Decision flow for each request: resolve the client IP, refuse if the
// client is still inside its backoff window (without touching secret
// material), extract the bearer credential, load the secret, enforce its
// expiry, and compare in constant time. A mismatch records a failure and
// extends the client's backoff; a match clears the client's record.
//
// Missing credentials, server misconfiguration (absent or expired secret)
// and unresolvable client identity are all denials, but only genuine wrong
// guesses count against the rate limit.
//
// The limiter's lock is intentionally not held across the whole
// authentication flow: two concurrent requests from one IP may both pass the
// throttle check before either records its failure. Backoff is a deterrent,
// not a hard bound, and the counter still converges under serialized load.
package auth
