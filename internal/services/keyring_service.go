package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/99designs/keyring"
)

const serviceName = "releaseradar"

// ErrSecretNotFound is returned when no secret is stored under a key.
var ErrSecretNotFound = errors.New("secret not found")

// KeyringService stores pipeline secrets in the OS keyring.
type KeyringService struct {
	ring keyring.Keyring
}

// OpenKeyringService opens the system keyring for the application.
func OpenKeyringService() (*KeyringService, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return NewKeyringService(ring), nil
}

func NewKeyringService(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

func (s *KeyringService) Set(key string, value []byte) error {
	if key == "" {
		return errors.New("key is required")
	}
	if len(value) == 0 {
		return errors.New("secret is empty")
	}
	return s.ring.Set(keyring.Item{
		Key:         key,
		Data:        value,
		Label:       "Release Radar " + key,
		Description: key + " used by Release Radar",
	})
}

func (s *KeyringService) Get(key string) (string, error) {
	if key == "" {
		return "", errors.New("key is required")
	}
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (s *KeyringService) Delete(key string) error {
	if key == "" {
		return errors.New("key is required")
	}
	err := s.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrSecretNotFound
	}
	return err
}

// Keys lists stored secret keys in order.
func (s *KeyringService) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
