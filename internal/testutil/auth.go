package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"summarist/internal/api"
	"summarist/internal/auth"
)

// GetAuthCookie creates a user, logs them in, and returns a valid session cookie.
func GetAuthCookie(t *testing.T, s *api.Server, email, password string) *http.Cookie {
	t.Helper()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password for test user: %v", err)
	}
	// The store's CreateUser expects a hash, not a plaintext password.
	_, err = s.Store().CreateUser(email, "Tester", passwordHash, false)
	if err != nil {
		t.Fatalf("Failed to create test user '%s': %v", email, err)
	}

	loginPayload := map[string]string{"email": email, "password": password}
	payloadBytes, _ := json.Marshal(loginPayload)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("Login failed within test helper for user '%s': got status %d, want 200", email, status)
	}

	cookies := rr.Result().Cookies()
	for _, cookie := range cookies {
		if cookie.Name == "session_token" {
			return cookie
		}
	}

	t.Fatal("Failed to get session cookie after successful login for test user")
	return nil
}

// CookieForUser is GetAuthCookie plus automatic cleanup of the account.
func CookieForUser(t *testing.T, server *api.Server, email, password string) *http.Cookie {
	t.Helper()
	cookie := GetAuthCookie(t, server, email, password)
	t.Cleanup(func() {
		user, err := server.Store().GetUserByEmail(email)
		if err == nil {
			server.Store().DeleteUser(user.ID)
		}
	})
	return cookie
}
