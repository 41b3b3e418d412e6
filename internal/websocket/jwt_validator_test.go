package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims interface{}
	err    error
}

func (s *stubVerifier) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return s.claims, s.err
}

type mockUserLookup struct {
	users map[string]uuid.UUID
	err   error
}

func (m *mockUserLookup) GetUserIDByAuth0ID(ctx context.Context, auth0ID string) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	id, ok := m.users[auth0ID]
	if !ok {
		return uuid.Nil, domain.ErrUserNotFound
	}
	return id, nil
}

func claimsFor(subject string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{RegisteredClaims: validator.RegisteredClaims{Subject: subject}}
}

func TestAuth0JWTValidator_ValidateToken(t *testing.T) {
	userID := uuid.New()
	lookup := &mockUserLookup{users: map[string]uuid.UUID{"auth0|alice": userID}}

	tests := []struct {
		name     string
		verifier *stubVerifier
		lookup   *mockUserLookup
		wantID   uuid.UUID
		wantErr  error
	}{
		{"known user", &stubVerifier{claims: claimsFor("auth0|alice")}, lookup, userID, nil},
		{"rejected token", &stubVerifier{err: errors.New("expired")}, lookup, uuid.Nil, ErrInvalidToken},
		{"unexpected claims type", &stubVerifier{claims: "claims"}, lookup, uuid.Nil, ErrInvalidToken},
		{"missing subject", &stubVerifier{claims: claimsFor("")}, lookup, uuid.Nil, ErrInvalidToken},
		{"never signed in", &stubVerifier{claims: claimsFor("auth0|bob")}, lookup, uuid.Nil, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewAuth0JWTValidator(tt.verifier, tt.lookup)

			got, err := v.ValidateToken(context.Background(), "token")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantID, got)
		})
	}
}

func TestAuth0JWTValidator_StoreFailureIsNotBadCredentials(t *testing.T) {
	storeErr := errors.New("connection refused")
	v := NewAuth0JWTValidator(&stubVerifier{claims: claimsFor("auth0|alice")}, &mockUserLookup{err: storeErr})

	_, err := v.ValidateToken(context.Background(), "token")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
