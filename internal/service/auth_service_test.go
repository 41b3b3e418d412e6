package service

import (
	"context"
	"testing"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateUser_NewThenExisting(t *testing.T) {
	store := testutil.NewMockStore()
	svc := NewAuthService(store.UserRepo())
	ctx := context.Background()

	first, err := svc.AuthenticateUser(ctx, "auth0|123", "a@example.com", ptr("Alice"), nil)
	require.NoError(t, err)
	assert.True(t, first.IsNewUser)
	assert.Equal(t, "Alice", *first.User.Name)

	second, err := svc.AuthenticateUser(ctx, "auth0|123", "alice@example.com", ptr("Alice B"), ptr("https://img/a.png"))
	require.NoError(t, err)
	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "alice@example.com", second.User.Email)
}

func TestGetUserIDByAuth0ID(t *testing.T) {
	store := testutil.NewMockStore()
	user := store.AddUser(&domain.User{Auth0ID: "auth0|xyz", Email: "x@example.com"})
	svc := NewAuthService(store.UserRepo())

	id, err := svc.GetUserIDByAuth0ID(context.Background(), "auth0|xyz")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	id, err = svc.GetUserIDByAuth0ID(context.Background(), "auth0|missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, uuid.Nil, id)
}
