package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leji-a/Inventory-Tracker/internal/auth"
)

const secret = "test-secret-0123456789"

func TestJWTRoundTrip(t *testing.T) {
	v, err := auth.NewJWTVerifier(secret)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := v.Issue("user-1", "a@b.c", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	id, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatal(err)
	}
	if id.UID != "user-1" || id.Email != "a@b.c" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestJWTRejects(t *testing.T) {
	v, _ := auth.NewJWTVerifier(secret)
	other, _ := auth.NewJWTVerifier("another-secret-0123456789")
	ctx := context.Background()

	expired, _ := v.Issue("user-1", "", -time.Minute)
	foreign, _ := other.Issue("user-1", "", time.Hour)
	noSub, _ := v.Issue("", "", time.Hour)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString([]byte(secret))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"expired": expired, "foreign": foreign, "no subject": noSub,
		"no expiry": noExp, "alg none": none, "garbage": "abc.def.ghi",
	} {
		if _, err := v.Verify(ctx, tok); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("%s: want ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		tok string
		ok  bool
	}{
		"Bearer abc":   {"abc", true},
		"bearer  abc ": {"abc", true},
		"Basic abc":    {"", false},
		"Bearer":       {"", false},
		"":             {"", false},
	}
	for in, want := range cases {
		tok, ok := auth.BearerToken(in)
		if tok != want.tok || ok != want.ok {
			t.Fatalf("BearerToken(%q) = %q,%v want %q,%v", in, tok, ok, want.tok, want.ok)
		}
	}
}

func TestShortSecretRejected(t *testing.T) {
	if _, err := auth.NewJWTVerifier("short"); err == nil {
		t.Fatal("short secret accepted")
	}
}
