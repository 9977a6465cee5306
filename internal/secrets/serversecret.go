package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// serverSecretBytes is the entropy of a generated server secret. 32 bytes
// encodes to a 43-character URL-safe string.
const serverSecretBytes = 32

// DefaultSecretTTL is how long a freshly rotated server secret stays valid.
const DefaultSecretTTL = 90 * 24 * time.Hour

// Errors distinguishing operational misconfiguration from ordinary auth
// failures. The gate reports these as server-side denial reasons and never
// counts them against the caller.
var (
	// ErrSecretMissing indicates the server secret has never been provisioned.
	ErrSecretMissing = errors.New("server secret is not set")
	// ErrExpiryMissing indicates the secret exists but has no expiry recorded.
	ErrExpiryMissing = errors.New("server secret expiry is not set")
	// ErrExpiryMalformed indicates the stored expiry is not a valid timestamp.
	ErrExpiryMalformed = errors.New("server secret expiry has an invalid format")
)

// ServerSecret is the shared secret MCP clients must present, together with
// its absolute expiry.
type ServerSecret struct {
	Value  string
	Expiry time.Time
}

// Expired reports whether the secret's expiry has passed at the given time.
func (s ServerSecret) Expired(now time.Time) bool {
	return now.After(s.Expiry)
}

// LoadServerSecret reads the server secret and its expiry from the store.
// Absence of either value is an operational error (the setup step was never
// run or was interrupted), not an authentication failure.
func LoadServerSecret(store Store) (ServerSecret, error) {
	value, err := store.Get(KeyServerSecret)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ServerSecret{}, ErrSecretMissing
		}
		return ServerSecret{}, fmt.Errorf("reading server secret: %w", err)
	}

	expiryStr, err := store.Get(KeyServerSecretExpiry)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ServerSecret{}, ErrExpiryMissing
		}
		return ServerSecret{}, fmt.Errorf("reading server secret expiry: %w", err)
	}

	// The expiry is stored as unix seconds in a numeric string, possibly
	// with a fractional part.
	expirySeconds, err := strconv.ParseFloat(expiryStr, 64)
	if err != nil {
		return ServerSecret{}, ErrExpiryMalformed
	}

	return ServerSecret{
		Value:  value,
		Expiry: time.Unix(int64(expirySeconds), 0),
	}, nil
}

// RotateServerSecret generates a fresh random server secret valid for ttl,
// stores it together with its expiry, and returns the new secret so the
// caller can display it exactly once.
func RotateServerSecret(store Store, ttl time.Duration) (ServerSecret, error) {
	raw := make([]byte, serverSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return ServerSecret{}, fmt.Errorf("generating server secret: %w", err)
	}

	secret := ServerSecret{
		Value:  base64.RawURLEncoding.EncodeToString(raw),
		Expiry: time.Now().Add(ttl),
	}

	if err := store.Set(KeyServerSecret, secret.Value); err != nil {
		return ServerSecret{}, err
	}
	expiryStr := strconv.FormatInt(secret.Expiry.Unix(), 10)
	if err := store.Set(KeyServerSecretExpiry, expiryStr); err != nil {
		return ServerSecret{}, err
	}
	return secret, nil
}

// APITokens is the Command Center bearer credential pair.
type APITokens struct {
	AccessToken  string
	RefreshToken string
}

// LoadAPITokens reads the Command Center token pair from the store. Both
// tokens must be present; a partial pair means setup never completed.
func LoadAPITokens(store Store) (APITokens, error) {
	access, err := store.Get(KeyAccessToken)
	if err != nil {
		return APITokens{}, fmt.Errorf("reading access token: %w", err)
	}
	refresh, err := store.Get(KeyRefreshToken)
	if err != nil {
		return APITokens{}, fmt.Errorf("reading refresh token: %w", err)
	}
	return APITokens{AccessToken: access, RefreshToken: refresh}, nil
}

// SaveAPITokens stores the Command Center token pair.
func SaveAPITokens(store Store, tokens APITokens) error {
	if err := store.Set(KeyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	return store.Set(KeyRefreshToken, tokens.RefreshToken)
}
