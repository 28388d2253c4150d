package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := MakeToken("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MakeToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := MakeToken("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MakeToken() error = %v", err)
	}
	expired, err := MakeToken("user-1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("MakeToken() error = %v", err)
	}
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "expired", token: expired, secret: testSecret},
		{name: "garbage", token: "not.a.token", secret: testSecret},
		{name: "no user id", token: noUser, secret: testSecret},
		{name: "empty secret", token: valid, secret: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret); err == nil {
				t.Error("ParseToken() expected error, got nil")
			}
		})
	}
}

func TestParseToken_FallsBackToSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-2",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != "user-2" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-2")
	}
}

func TestMakeToken_RequiresSecret(t *testing.T) {
	if _, err := MakeToken("user-1", "", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("MakeToken() error = %v, want ErrMissingSecret", err)
	}
}
