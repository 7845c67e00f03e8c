package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/repositories"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"  Bearer   abc123  ", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(req); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{repositories.ErrNotFound, http.StatusNotFound},
		{auth.ErrSessionNotFound, http.StatusNotFound},
		{repositories.ErrConflict, http.StatusConflict},
		{engagement.ErrNoActor, http.StatusUnauthorized},
		{engagement.ErrInvalidTarget, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := errorStatus(tc.err); got != tc.want {
			t.Fatalf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	// Wrapped domain errors keep their mapping.
	wrapped := errors.Join(errors.New("context"), repositories.ErrNotFound)
	if got := errorStatus(wrapped); got != http.StatusNotFound {
		t.Fatalf("errorStatus(wrapped) = %d, want 404", got)
	}
}

func TestPageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=25", nil)
	page, limit := pageParams(req)
	if page != 3 || limit != 25 {
		t.Fatalf("unexpected params: page=%d limit=%d", page, limit)
	}

	req = httptest.NewRequest(http.MethodGet, "/?page=abc", nil)
	page, limit = pageParams(req)
	if page != 0 || limit != 0 {
		t.Fatalf("expected zero values for malformed params, got page=%d limit=%d", page, limit)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4321"
	if got := clientIP(req); got != "192.0.2.10" {
		t.Fatalf("clientIP = %q, want 192.0.2.10", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientIP(req); got != "198.51.100.7" {
		t.Fatalf("clientIP = %q, want first forwarded address", got)
	}
}
