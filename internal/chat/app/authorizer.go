package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Authorizer verifies an opaque bearer credential and resolves the principal
// id it was issued for. Credential issuance lives outside this service.
type Authorizer interface {
	Authenticate(ctx context.Context, credential string) (int64, error)
}

type principalClaims struct {
	jwt.RegisteredClaims
	PrincipalID int64 `json:"id"`
}

type jwtAuthorizer struct {
	secret []byte
}

// NewJWTAuthorizer verifies HS256 tokens signed with the shared secret.
func NewJWTAuthorizer(secret string) (Authorizer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &jwtAuthorizer{secret: []byte(secret)}, nil
}

func (a *jwtAuthorizer) Authenticate(_ context.Context, credential string) (int64, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return 0, errors.New("credential is required")
	}

	var claims principalClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("verify credential: %w", err)
	}
	if claims.PrincipalID <= 0 {
		return 0, errors.New("credential carries no principal id")
	}
	return claims.PrincipalID, nil
}
