package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when JWT validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound is returned when the token's subject never completed sign-in
	ErrUserNotFound = errors.New("user not found")
)

// TokenVerifier checks a raw JWT. *validator.Validator satisfies it, so the
// socket shares the Auth0 validator (and its JWKS cache) with the REST API.
type TokenVerifier interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// UserLookup resolves an Auth0 subject to a user id
type UserLookup interface {
	GetUserIDByAuth0ID(ctx context.Context, auth0ID string) (uuid.UUID, error)
}

// Auth0JWTValidator turns the ?token= of an upgrade request into the user
// whose ledger events the connection will receive
type Auth0JWTValidator struct {
	verifier   TokenVerifier
	userLookup UserLookup
}

func NewAuth0JWTValidator(verifier TokenVerifier, userLookup UserLookup) *Auth0JWTValidator {
	return &Auth0JWTValidator{verifier: verifier, userLookup: userLookup}
}

// ValidateToken returns the user the token belongs to. Lookup failures
// other than an unknown user are returned wrapped so callers can tell them
// apart from bad credentials.
func (v *Auth0JWTValidator) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := v.verifier.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok || validatedClaims.RegisteredClaims.Subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := v.userLookup.GetUserIDByAuth0ID(ctx, validatedClaims.RegisteredClaims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return uuid.Nil, ErrUserNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve websocket user: %w", err)
	}
	return userID, nil
}
