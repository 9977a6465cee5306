package secrets

import "errors"

// ServiceName is the keyring service under which all secrets are stored.
const ServiceName = "commvault-mcp-server"

// Well-known keys within the store.
const (
	KeyServerSecret       = "server_secret"
	KeyServerSecretExpiry = "server_secret_expiry"
	KeyAccessToken        = "access_token"
	KeyRefreshToken       = "refresh_token"
)

// ErrNotFound is returned by Store.Get when no value exists for the key.
var ErrNotFound = errors.New("secret not found")

// Store is the minimal secret vault interface the server depends on.
// Implementations must be safe for concurrent use; the auth gate reads the
// server secret on every authenticated request.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key, replacing any existing value.
	Set(key, value string) error
	// Delete removes key if present. Deleting an absent key is not an error.
	Delete(key string) error
}
