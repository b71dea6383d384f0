package auth

import (
	"testing"
	"time"
)

func TestAPIKeyHashRoundTrip(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey error: %v", err)
	}
	if len(key) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(key))
	}
	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("HashAPIKey error: %v", err)
	}
	if err := CompareAPIKey(hash, key); err != nil {
		t.Fatalf("expected key to match, got %v", err)
	}
	if err := CompareAPIKey(hash, key+"x"); err == nil {
		t.Fatalf("expected mismatch")
	}
	if _, err := HashAPIKey(""); err != ErrEmptyKey {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestAccessToken(t *testing.T) {
	m := &Manager{Secret: []byte("s3cret"), AccessTTL: time.Minute, Issuer: "intake"}
	token, err := m.NewAccessToken(RoleAdmin, "ops")
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Role != RoleAdmin || claims.Subject != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := &Manager{Secret: []byte("other"), AccessTTL: time.Minute, Issuer: "intake"}
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestExpiredToken(t *testing.T) {
	m := &Manager{Secret: []byte("s3cret"), AccessTTL: -time.Minute, Issuer: "intake"}
	token, err := m.NewAccessToken(RoleAdmin, "ops")
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
