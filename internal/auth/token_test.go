package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	m, err := NewManager(secret)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerRejectsBadSecret(t *testing.T) {
	if _, err := NewManager("not-base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64 secret")
	}
	if _, err := NewManager(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := testManager(t)

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	username, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected subject alice, got %q", username)
	}
}

func TestVerifyExpiryWindow(t *testing.T) {
	m := testManager(t)

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Just inside the 24h window.
	m.now = func() time.Time { return issuedAt.Add(23*time.Hour + 59*time.Minute) }
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("expected token valid at 23h59m, got %v", err)
	}

	// Just past it.
	m.now = func() time.Time { return issuedAt.Add(24*time.Hour + time.Minute) }
	if _, err := m.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken at 24h01m, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := testManager(t)

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	if _, err := m.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	m := testManager(t)

	other, err := NewManager(base64.StdEncoding.EncodeToString([]byte("another-signing-key-entirely-0000")))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := other.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testManager(t)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(input); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("input %q: expected ErrInvalidToken, got %v", input, err)
		}
	}
}
