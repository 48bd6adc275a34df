package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vibast-solutions/ms-go-idmatch/app/service"

	"golang.org/x/crypto/bcrypt"
)

func TestAPIKeyVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	verifier := service.NewAPIKeyVerifier(string(hash) + "\n")

	if err := verifier.Verify("secret-key"); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}
	if err := verifier.Verify("other"); !errors.Is(err, service.ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
	if err := verifier.Verify("   "); !errors.Is(err, service.ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey for empty key, got %v", err)
	}
}

func TestAPIKeyVerifier_BrokenHash(t *testing.T) {
	verifier := service.NewAPIKeyVerifier("not-a-hash")
	err := verifier.Verify("secret-key")
	if err == nil || errors.Is(err, service.ErrInvalidAPIKey) {
		t.Fatalf("expected a hash error, got %v", err)
	}
}

func TestGenerateAPIKey(t *testing.T) {
	raw, hash, err := service.GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(raw, "msidm_") || len(raw) != len("msidm_")+64 {
		t.Fatalf("unexpected key format %q", raw)
	}
	if err := service.NewAPIKeyVerifier(hash).Verify(raw); err != nil {
		t.Fatalf("generated key does not verify: %v", err)
	}
}
