// Package auth keeps the API bearer token in the OS keyring.
package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	service     = "routinr"
	keyringUser = "api-token"
	// TokenEnv overrides the keyring, for machines without one.
	TokenEnv = "ROUTINR_TOKEN"
)

var (
	// ErrNotFound means no token is stored: the user is signed out.
	ErrNotFound = errors.New("not signed in")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be used.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Token returns the stored bearer token. ROUTINR_TOKEN wins over the keyring.
func Token() (string, error) {
	if t := os.Getenv(TokenEnv); t != "" {
		return t, nil
	}
	t, err := keyring.Get(service, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return t, nil
}

func SaveToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(service, keyringUser, token); err != nil {
		return fmt.Errorf("store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken signs the user out locally. Deleting a missing token
// returns ErrNotFound.
func DeleteToken() error {
	err := keyring.Delete(service, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	return nil
}
