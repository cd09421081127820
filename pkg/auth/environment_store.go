package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only by nature; store and delete are unsupported.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(label string) (*Account, error) {
	token := os.Getenv("TWITTERSTATS_BEARER_TOKEN")
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	// Environment variables carry no label, so fall back to "default"
	if label == "" {
		label = "default"
	}

	return &Account{
		Label:        label,
		BearerToken:  token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the environment variable is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(label string) bool {
	return os.Getenv("TWITTERSTATS_BEARER_TOKEN") != ""
}
