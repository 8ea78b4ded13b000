package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the keychain service the API key is stored under
	KeyringService = "tiktoksync"
	keyringPrefix  = "airtable_"
)

// KeyringStore reads tokens from the system keychain. Entries are keyed by
// record store base id, e.g. service "tiktoksync", user "airtable_appXXXX".
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring-based token store
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Name() string {
	return "keyring:" + k.service
}

// Retrieve gets the token from the system keychain
func (k *KeyringStore) Retrieve(account string) (string, error) {
	if account == "" {
		return "", ErrInvalidAccount
	}

	token, err := keyring.Get(k.service, KeyringUser(account))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrCredentialsNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	return token, nil
}

// KeyringUser returns the keychain user name for a base id
func KeyringUser(account string) string {
	return keyringPrefix + account
}
