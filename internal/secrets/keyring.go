package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Keyring is a Store backed by the operating system keyring (Keychain on
// macOS, Secret Service on Linux, Credential Manager on Windows).
type Keyring struct {
	service string
}

// NewKeyring returns a Store using the default service name.
func NewKeyring() *Keyring {
	return &Keyring{service: ServiceName}
}

// Get implements Store.
func (k *Keyring) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keyring get %s: %w", key, err)
	}
	return value, nil
}

// Set implements Store.
func (k *Keyring) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (k *Keyring) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}
