package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m, err := NewSessionManager("test-secret", "healthmap", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tok, err := m.Issue()
	if err != nil {
		t.Fatal(err)
	}
	sid, err := m.Verify(tok.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sid != tok.SessionID {
		t.Errorf("session id = %q, want %q", sid, tok.SessionID)
	}
	if !tok.ExpiresAt.After(time.Now()) {
		t.Errorf("expires_at %v is not in the future", tok.ExpiresAt)
	}
}

func TestVerifyRejects(t *testing.T) {
	m, _ := NewSessionManager("test-secret", "healthmap", time.Hour)
	other, _ := NewSessionManager("other-secret", "healthmap", time.Hour)
	wrongIssuer, _ := NewSessionManager("test-secret", "someone-else", time.Hour)

	good, _ := m.Issue()
	foreign, _ := other.Issue()
	misissued, _ := wrongIssuer.Issue()

	expiring, _ := NewSessionManager("test-secret", "healthmap", time.Minute)
	expiring.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiring.Issue()

	parts := strings.Split(good.Token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered payload", tampered},
		{"wrong secret", foreign.Token},
		{"wrong issuer", misissued.Token},
		{"expired", expired.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%s) err = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestNewSessionManagerValidates(t *testing.T) {
	if _, err := NewSessionManager("", "healthmap", time.Hour); err == nil {
		t.Error("empty secret accepted")
	}
	if _, err := NewSessionManager("s", "healthmap", 0); err == nil {
		t.Error("zero ttl accepted")
	}
}
