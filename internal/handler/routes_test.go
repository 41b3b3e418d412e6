package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/middleware"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/service"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenValidator accepts "Bearer <subject>" and rejects "Bearer bad"
type tokenValidator struct{}

func (tokenValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token == "bad" {
		return nil, errors.New("signature is invalid")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: token},
		CustomClaims:     &middleware.CustomClaims{Email: token + "@example.com"},
	}, nil
}

const testInternalKey = "s3cret"

func newTestServer(t *testing.T) (*echo.Echo, *testutil.MockStore) {
	t.Helper()
	store := testutil.NewMockStore()
	publisher := &websocket.NoOpPublisher{}

	authService := service.NewAuthService(store.UserRepo())
	monitor := service.NewBudgetAlertMonitor(store.BudgetRepo(), store.TransactionRepo(), &testutil.RecordingSender{}, publisher, zerolog.Nop(), service.BudgetAlertConfig{})
	limiter := middleware.NewRateLimiterWithConfig(2)
	t.Cleanup(limiter.Stop)

	e := echo.New()
	RegisterRoutes(e, RouteConfig{
		Auth:           middleware.NewAuthMiddlewareWithValidator(tokenValidator{}, authService),
		RateLimiter:    limiter,
		InternalAPIKey: testInternalKey,
	}, Handlers{
		Auth:        NewAuthHandler(authService),
		Account:     NewAccountHandler(service.NewAccountService(store, store.AccountRepo(), store.TransactionRepo(), publisher)),
		Transaction: NewTransactionHandler(service.NewTransactionService(store, store.TransactionRepo(), store.AccountRepo(), publisher)),
		Budget:      NewBudgetHandler(service.NewBudgetService(store.BudgetRepo(), store.AccountRepo(), monitor)),
		Receipt:     NewReceiptHandler(service.NewReceiptService(nil, nil)),
		Internal:    NewInternalHandler(&fakeSweeper{count: 2}, &fakeSweeper{}, &testutil.RecordingJobPublisher{}, nil),
	})
	return e, store
}

func serve(e *echo.Echo, method, path, token, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Authentication(t *testing.T) {
	e, store := newTestServer(t)
	store.AddUser(&domain.User{Auth0ID: "auth0|known", Email: "known@example.com"})

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		expected int
	}{
		{"no token", http.MethodGet, "/api/v1/accounts", "", http.StatusUnauthorized},
		{"invalid token", http.MethodGet, "/api/v1/accounts", "bad", http.StatusUnauthorized},
		{"unknown user", http.MethodGet, "/api/v1/accounts", "auth0|stranger", http.StatusUnauthorized},
		{"known user", http.MethodGet, "/api/v1/accounts", "auth0|known", http.StatusOK},
		{"callback needs no user record", http.MethodPost, "/api/v1/auth/callback", "auth0|newcomer", http.StatusOK},
		{"me needs a user record", http.MethodGet, "/api/v1/auth/me", "auth0|stranger2", http.StatusUnauthorized},
		{"receipt scanning disabled", http.MethodPost, "/api/v1/receipts/scan", "auth0|known", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.path, tt.token, "", nil)
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}

func TestRoutes_TransactionCreateIsRateLimited(t *testing.T) {
	e, store := newTestServer(t)
	user := store.AddUser(&domain.User{Auth0ID: "auth0|spender", Email: "spender@example.com"})
	account := store.AddAccount(&domain.Account{UserID: user.ID, Name: "Main", Type: domain.AccountTypeCurrent, IsDefault: true})

	body := fmt.Sprintf(`{"accountId": %q, "type": "EXPENSE", "amount": "1", "date": "2024-01-01", "category": "food"}`, account.ID)
	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodPost, "/api/v1/transactions", "auth0|spender", body, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := serve(e, http.MethodPost, "/api/v1/transactions", "auth0|spender", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, store.TransactionCount())

	// Reads are not limited
	rec = serve(e, http.MethodGet, "/api/v1/accounts", "auth0|spender", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_InternalKey(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, http.MethodPost, "/api/v1/internal/sweeps/recurring", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPost, "/api/v1/internal/sweeps/recurring", "", "", map[string]string{middleware.InternalKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPost, "/api/v1/internal/sweeps/recurring", "", "", map[string]string{middleware.InternalKeyHeader: testInternalKey})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sweep": "recurring", "count": 2}`, rec.Body.String())

	// A user token is not a substitute for the key
	rec = serve(e, http.MethodPost, "/api/v1/internal/sweeps/budget-alerts", "auth0|known", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_OpenAPI(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, http.MethodGet, "/openapi.json", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi":"3.0.3"`)
	assert.Contains(t, rec.Body.String(), "/transactions/bulk-delete")
}
