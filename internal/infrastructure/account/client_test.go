package account

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kickpool/prediction-league/internal/platform/resilience"
	"github.com/kickpool/prediction-league/internal/usecase"
)

func TestVerifyAccessToken_ActiveToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"user_id":"user-1","email":"a@example.com","name":"Alice"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "/v1/auth/introspect", nil, nil)

	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if principal.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", principal.UserID)
	}
	if principal.Email != "a@example.com" {
		t.Fatalf("Email = %q", principal.Email)
	}
}

func TestVerifyAccessToken_EmptyToken(t *testing.T) {
	client := NewClient(nil, "http://localhost:0", "/v1/auth/introspect", nil, nil)

	_, err := client.VerifyAccessToken(context.Background(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyAccessToken_InactiveToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "", nil, nil)

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyAccessToken_DeniedByService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "", nil, nil)

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyAccessToken_CircuitOpensAfterFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := resilience.NewCircuitBreaker(2, time.Minute, 1)
	client := NewClient(server.Client(), server.URL, "", breaker, nil)

	for i := 0; i < 2; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "token-abc"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("err = %v, want ErrDependencyUnavailable", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (third request short-circuited)", calls)
	}
}

func TestVerifyAccessToken_DenialDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	breaker := resilience.NewCircuitBreaker(1, time.Minute, 1)
	client := NewClient(server.Client(), server.URL, "", breaker, nil)

	for i := 0; i < 3; i++ {
		_, err := client.VerifyAccessToken(context.Background(), "token-abc")
		if !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("call %d: err = %v, want ErrUnauthorized", i, err)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://acct:8081/", "/v1/auth/introspect", "http://acct:8081/v1/auth/introspect"},
		{"http://acct:8081", "v1/auth/introspect", "http://acct:8081/v1/auth/introspect"},
		{"http://acct:8081", "", "http://acct:8081"},
		{"http://acct:8081", "https://other/introspect", "https://other/introspect"},
	}
	for _, tt := range tests {
		if got := buildURL(tt.base, tt.path); got != tt.want {
			t.Errorf("buildURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
