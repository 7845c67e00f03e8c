package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignUp(t *testing.T) {
	users := &fakeUsers{}
	sessions := &fakeSessions{}
	handler := AuthHandler{Users: users, Sessions: sessions}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", signUpRequest{
		Username: "  Alice ", Email: "ALICE@example.com", Password: "password123",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(users.created) != 1 {
		t.Fatalf("expected one user created, got %d", len(users.created))
	}
	created := users.created[0]
	if created.Username != "alice" || created.Email != "alice@example.com" {
		t.Fatalf("expected normalised credentials, got %+v", created)
	}
	if created.DisplayName != "alice" {
		t.Fatalf("expected display name defaulted to username, got %q", created.DisplayName)
	}
	if created.Password == "password123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	var resp struct {
		User   *userResponse        `json:"user"`
		Tokens models.SessionTokens `json:"tokens"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if resp.Tokens.AccessToken == "" {
		t.Fatal("expected session tokens in the response")
	}
}

func TestSignUpValidation(t *testing.T) {
	handler := AuthHandler{Users: &fakeUsers{}, Sessions: &fakeSessions{}}

	cases := []struct {
		name string
		req  signUpRequest
	}{
		{"missing fields", signUpRequest{Username: "alice"}},
		{"invalid email", signUpRequest{Username: "alice", Email: "not-an-address", Password: "password123"}},
		{"short password", signUpRequest{Username: "alice", Email: "alice@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestSignUpConflict(t *testing.T) {
	users := &fakeUsers{createErr: repositories.ErrConflict}
	handler := AuthHandler{Users: users, Sessions: &fakeSessions{}}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", signUpRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSignUpRateLimited(t *testing.T) {
	handler := AuthHandler{Users: &fakeUsers{}, Sessions: &fakeSessions{}, Limiter: denyLimiter{}}

	rec := postJSON(t, handler.SignUp, "/api/v1/auth/signup", signUpRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &fakeUsers{byID: map[string]models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", Password: string(hashed)},
	}}
	sessions := &fakeSessions{}
	handler := AuthHandler{Users: users, Sessions: sessions}

	rec := postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{
		Email: "alice@example.com", Password: "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Username works in place of email.
	rec = postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{
		Username: "ALICE", Password: "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for username login, got %d", rec.Code)
	}

	rec = postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{
		Email: "alice@example.com", Password: "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}

	rec = postJSON(t, handler.Login, "/api/v1/auth/login", loginRequest{
		Email: "ghost@example.com", Password: "password123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown account, got %d", rec.Code)
	}
}

func TestRefresh(t *testing.T) {
	sessions := &fakeSessions{}
	handler := AuthHandler{Users: &fakeUsers{}, Sessions: sessions}

	rec := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", refreshRequest{RefreshToken: "token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	sessions.refreshErr = auth.ErrRefreshTokenExpired
	rec = postJSON(t, handler.Refresh, "/api/v1/auth/refresh", refreshRequest{RefreshToken: "token"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}

	rec = postJSON(t, handler.Refresh, "/api/v1/auth/refresh", refreshRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing token, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	sessions := sessionsFor("u1")
	handler := AuthHandler{Users: &fakeUsers{}, Sessions: sessions}

	body := strings.NewReader(`{"refreshToken":"refresh-u1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", body)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "refresh-u1" {
		t.Fatalf("expected refresh token revoked, got %v", sessions.revoked)
	}

	// No bearer token, no logout.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	handler.Logout(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &fakeUsers{byID: map[string]models.User{
		"u1": {ID: "u1", Username: "alice", Password: string(hashed)},
	}}
	handler := AuthHandler{Users: users, Sessions: sessionsFor("u1")}

	send := func(payload changePasswordRequest) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer access-u1")
		rec := httptest.NewRecorder()
		handler.ChangePassword(rec, req)
		return rec
	}

	rec := send(changePasswordRequest{OldPassword: "wrong", NewPassword: "new-password"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong old password, got %d", rec.Code)
	}

	rec = send(changePasswordRequest{OldPassword: "old-password", NewPassword: "short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short new password, got %d", rec.Code)
	}

	rec = send(changePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(users.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(users.updated))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users.updated[0].Password), []byte("new-password")); err != nil {
		t.Fatalf("stored hash does not match new password: %v", err)
	}
}
