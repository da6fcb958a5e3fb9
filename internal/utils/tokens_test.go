package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	key := []byte("secret")
	tok, exp, err := SignAccessToken(key, 7, "admin", time.Now(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("unexpected expiry %v", exp)
	}
	claims, err := ParseAccessToken(key, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	key := []byte("secret")

	expired, _, _ := SignAccessToken(key, 1, "employee", time.Now().Add(-2*time.Hour), time.Hour)
	if _, err := ParseAccessToken(key, expired); err == nil {
		t.Error("expired token accepted")
	}

	other, _, _ := SignAccessToken([]byte("other"), 1, "employee", time.Now(), time.Hour)
	if _, err := ParseAccessToken(key, other); err == nil {
		t.Error("token signed with another key accepted")
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1, Role: "admin"}).SignedString(key)
	if _, err := ParseAccessToken(key, noExp); err == nil {
		t.Error("token without expiry accepted")
	}
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(0)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken(0)
	if len(a) != 64 || a == b {
		t.Fatalf("unexpected refresh tokens %q %q", a, b)
	}
}
