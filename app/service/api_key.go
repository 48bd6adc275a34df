package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAPIKey = errors.New("invalid api key")

const apiKeyPrefix = "msidm_"

type APIKeyVerifier interface {
	Verify(apiKey string) error
}

type bcryptAPIKeyVerifier struct {
	hash []byte
}

func NewAPIKeyVerifier(hash string) APIKeyVerifier {
	return &bcryptAPIKeyVerifier{hash: []byte(strings.TrimSpace(hash))}
}

func (v *bcryptAPIKeyVerifier) Verify(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrInvalidAPIKey
	}

	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(apiKey)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidAPIKey
		}
		return err
	}
	return nil
}

// GenerateAPIKey returns a new random key and its bcrypt hash for API_KEY_HASH.
func GenerateAPIKey() (string, string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}

	rawKey := apiKeyPrefix + hex.EncodeToString(secret)
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return rawKey, string(hash), nil
}
