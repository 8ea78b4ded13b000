package auth

import (
	"errors"
	"fmt"
)

// TokenStore is a source the record store API key can be read from
type TokenStore interface {
	// Name identifies the store in logs
	Name() string

	// Retrieve returns the token for account or ErrCredentialsNotFound
	Retrieve(account string) (string, error)
}

// Manager looks a token up in several stores, first hit wins
type Manager struct {
	stores []TokenStore
}

// NewManager creates a manager that consults stores in the given order
func NewManager(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// APIKeyEnvVar is the variable config reads the record store API key from.
// The stores here are only consulted when it is unset.
const APIKeyEnvVar = "AIRTABLE_API_KEY"

// DefaultManager looks the key up in the system keyring
func DefaultManager() *Manager {
	return NewManager(NewKeyringStore(KeyringService))
}

// Retrieve returns the token for account from the first store that has it,
// along with the name of that store
func (m *Manager) Retrieve(account string) (string, string, error) {
	var lastErr error
	for _, store := range m.stores {
		token, err := store.Retrieve(account)
		if err == nil && token != "" {
			return token, store.Name(), nil
		}
		if err != nil && !errors.Is(err, ErrCredentialsNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("api key not found for %q: %w", account, lastErr)
	}
	return "", "", fmt.Errorf("api key not found for %q: %w", account, ErrCredentialsNotFound)
}

// MaskToken masks all but the first 4 and last 4 characters of a token
func MaskToken(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidAccount      = errors.New("invalid account")
)
