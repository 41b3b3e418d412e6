package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/middleware"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Helper to set up auth context with claims
func setupAuthContext(c echo.Context, auth0ID string, email, name, picture string) {
	customClaims := &middleware.CustomClaims{
		Email:   email,
		Name:    name,
		Picture: picture,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// Helper to set up a context that already passed RequireUser
func setupUserContext(c echo.Context, user *domain.User) {
	setupAuthContext(c, user.Auth0ID, user.Email, "", "")
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, user.ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ptr[T any](v T) *T {
	return &v
}

// seedUser stores a user with one default CURRENT account
func seedUser(store *testutil.MockStore, balance string) (*domain.User, *domain.Account) {
	user := store.AddUser(&domain.User{
		Auth0ID: "auth0|" + uuid.NewString(),
		Email:   "test@example.com",
		Name:    ptr("Test User"),
	})
	account := store.AddAccount(&domain.Account{
		UserID:    user.ID,
		Name:      "Main",
		Type:      domain.AccountTypeCurrent,
		Balance:   decimal.RequireFromString(balance),
		IsDefault: true,
	})
	return user, account
}
