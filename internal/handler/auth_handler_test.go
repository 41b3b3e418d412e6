package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/service"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/google/uuid"
)

func newAuthHandler() (*AuthHandler, *testutil.MockStore) {
	store := testutil.NewMockStore()
	return NewAuthHandler(service.NewAuthService(store.UserRepo())), store
}

func TestCallback_NewUser(t *testing.T) {
	handler, store := newAuthHandler()

	c, rec := newContext(http.MethodPost, "/api/v1/auth/callback", "")
	setupAuthContext(c, "auth0|newuser123", "new@example.com", "New User", "https://example.com/pic.jpg")

	err := handler.Callback(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if !response.IsNewUser {
		t.Error("Expected isNewUser to be true")
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("Expected email 'new@example.com', got %s", response.User.Email)
	}
	if response.User.Name == nil || *response.User.Name != "New User" {
		t.Errorf("Expected name 'New User', got %v", response.User.Name)
	}
	if len(store.Users) != 1 {
		t.Errorf("Expected 1 stored user, got %d", len(store.Users))
	}
}

func TestCallback_ExistingUser(t *testing.T) {
	handler, store := newAuthHandler()
	store.AddUser(&domain.User{Auth0ID: "auth0|existing", Email: "old@example.com"})

	c, rec := newContext(http.MethodPost, "/api/v1/auth/callback", "")
	setupAuthContext(c, "auth0|existing", "new@example.com", "", "")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.IsNewUser {
		t.Error("Expected isNewUser to be false")
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("Expected refreshed email, got %s", response.User.Email)
	}
	if len(store.Users) != 1 {
		t.Errorf("Expected 1 stored user, got %d", len(store.Users))
	}
}

func TestCallback_MissingEmail(t *testing.T) {
	handler, _ := newAuthHandler()

	c, rec := newContext(http.MethodPost, "/api/v1/auth/callback", "")
	setupAuthContext(c, "auth0|noemail", "", "No Email", "")

	_ = handler.Callback(c)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCallback_NoAuth0ID(t *testing.T) {
	handler, _ := newAuthHandler()

	c, rec := newContext(http.MethodPost, "/api/v1/auth/callback", "")

	_ = handler.Callback(c)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestCallback_StoreError(t *testing.T) {
	handler, store := newAuthHandler()
	store.SetFailure("CreateOrGetByAuth0ID", errors.New("connection refused"))

	c, rec := newContext(http.MethodPost, "/api/v1/auth/callback", "")
	setupAuthContext(c, "auth0|broken", "broken@example.com", "", "")

	_ = handler.Callback(c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}

func TestMe_ReturnsUser(t *testing.T) {
	handler, store := newAuthHandler()
	user, _ := seedUser(store, "0")

	c, rec := newContext(http.MethodGet, "/api/v1/auth/me", "")
	setupUserContext(c, user)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != user.ID.String() {
		t.Errorf("Expected id %s, got %s", user.ID, response.ID)
	}
}

func TestMe_UnknownUser(t *testing.T) {
	handler, _ := newAuthHandler()

	c, rec := newContext(http.MethodGet, "/api/v1/auth/me", "")
	setupUserContext(c, &domain.User{ID: uuid.New(), Auth0ID: "auth0|ghost"})

	_ = handler.Me(c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	handler, _ := newAuthHandler()

	c, rec := newContext(http.MethodPost, "/api/v1/auth/logout", "")
	setupAuthContext(c, "auth0|test", "test@example.com", "", "")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
