package server

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret string, method jwt.SigningMethod, claims principalClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTAuthorizerRequiresSecret(t *testing.T) {
	if _, err := NewJWTAuthorizer("   "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestJWTAuthorizerAcceptsValidToken(t *testing.T) {
	authorizer, err := NewJWTAuthorizer("test-secret")
	if err != nil {
		t.Fatalf("new authorizer: %v", err)
	}

	token := signTestToken(t, "test-secret", jwt.SigningMethodHS256, principalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		PrincipalID: 7,
	})

	id, err := authorizer.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id != 7 {
		t.Fatalf("principal id = %d, want 7", id)
	}
}

func TestJWTAuthorizerRejectsBadTokens(t *testing.T) {
	authorizer, err := NewJWTAuthorizer("test-secret")
	if err != nil {
		t.Fatalf("new authorizer: %v", err)
	}

	expiry := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	cases := []struct {
		name  string
		token string
	}{
		{"empty credential", "   "},
		{"garbage credential", "not-a-token"},
		{"wrong secret", signTestToken(t, "other-secret", jwt.SigningMethodHS256, principalClaims{RegisteredClaims: expiry, PrincipalID: 7})},
		{"wrong algorithm", signTestToken(t, "test-secret", jwt.SigningMethodHS512, principalClaims{RegisteredClaims: expiry, PrincipalID: 7})},
		{"expired token", signTestToken(t, "test-secret", jwt.SigningMethodHS256, principalClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
			PrincipalID:      7,
		})},
		{"missing principal id", signTestToken(t, "test-secret", jwt.SigningMethodHS256, principalClaims{RegisteredClaims: expiry})},
	}
	for _, tc := range cases {
		if _, err := authorizer.Authenticate(context.Background(), tc.token); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
