package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/themeforge/internal/api/auth"
	"github.com/codr1/themeforge/internal/api/authz"
)

func TestWithAPIKey(t *testing.T) {
	hash, err := auth.HashAPIKey("secret")
	if err != nil {
		t.Fatalf("hash api key: %v", err)
	}
	handler := WithAPIKey(hash)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "missing key", path: "/api/v1/themes", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", path: "/api/v1/themes", headers: map[string]string{"X-API-Key": "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "bearer key", path: "/api/v1/themes", headers: map[string]string{"Authorization": "Bearer secret"}, wantStatus: http.StatusNoContent},
		{name: "header key", path: "/api/v1/themes", headers: map[string]string{"X-API-Key": "secret"}, wantStatus: http.StatusNoContent},
		{name: "health is open", path: "/health", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestWithAPIKeyDisabled(t *testing.T) {
	handler := WithAPIKey("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/themes", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestWithUser(t *testing.T) {
	var got string
	handler := WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = authz.UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, " user-7 ")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "user-7" {
		t.Fatalf("expected user-7, got %q", got)
	}

	got = "unset"
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "" {
		t.Fatalf("expected no user, got %q", got)
	}
}

func TestMiddlewareChain(t *testing.T) {
	var requestID string
	handler := ChainMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID = RequestIDFromContext(r.Context())
			panic("boom")
		}),
		WithRecovery,
		WithLogging,
		WithRequestID,
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if requestID == "" || rr.Header().Get("X-Request-ID") != requestID {
		t.Fatalf("expected request id header %q to match context id %q", rr.Header().Get("X-Request-ID"), requestID)
	}
}
