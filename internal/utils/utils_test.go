package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "a@b.test", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if time.Until(tok.Exp) <= 4*time.Minute {
		t.Errorf("unexpected expiry %s", tok.Exp)
	}
	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Errorf("UserID = %d, %v", id, err)
	}
	if claims.Email != "a@b.test" {
		t.Errorf("email = %q", claims.Email)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	good, _ := NewAccessToken("secret", 1, "", 5)
	expired, _ := NewAccessToken("secret", 1, "", -5)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "iss": tokenIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1", "iss": "someone-else", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	zeroSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "0", "iss": tokenIssuer, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"secret", expired.Token},
		"none alg":     {"secret", noneAlg},
		"wrong issuer": {"secret", foreign},
		"zero subject": {"secret", zeroSub},
		"garbage":      {"secret", "not-a-jwt"},
	}
	for name, c := range cases {
		if _, err := ParseAccessToken(c.secret, c.raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken(7)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Errorf("unexpected refresh tokens %q %q", a.Raw, b.Raw)
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) || len(HashRefreshRaw(a.Raw)) != 64 {
		t.Error("hash should be a stable 64-char hex digest")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Error("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password verified")
	}
}
