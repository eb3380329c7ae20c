package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("agent@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "agent@example.com" {
		t.Errorf("subject mismatch: got %q", subject)
	}
}

func TestTokenIssuer_SubjectIsBound(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)

	tokenA, err := issuer.Issue("a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, err := issuer.Verify(tokenA)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject == "b@example.com" {
		t.Error("token for A must never resolve to B")
	}
	if subject != "a@example.com" {
		t.Errorf("subject mismatch: got %q", subject)
	}
}

func TestTokenIssuer_TamperedTokenFails(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("agent@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip one character in the payload segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 JWT segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := issuer.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestTokenIssuer_ExpiredTokenFails(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, -time.Minute)

	token, err := issuer.Issue("agent@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuer_WrongSecretFails(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)
	other := NewTokenIssuer("a-different-secret", time.Hour)

	token, err := issuer.Issue("agent@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenIssuer_RejectsMissingExpiry(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)

	// Hand-craft a token without an exp claim but with a valid signature.
	claims := jwt.RegisteredClaims{
		Subject:  "agent@example.com",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := issuer.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for missing exp, got %v", err)
	}
}

func TestTokenIssuer_RejectsEmptySubject(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}
