package store

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "castvote-cli"

// KeyringStore keeps values in the OS keychain/credential manager
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a store scoped to the castvote keyring service
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

func (k *KeyringStore) Save(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Load(key string) (string, bool, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %s from keyring: %w", key, err)
	}
	return value, true, nil
}

func (k *KeyringStore) Clear(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
