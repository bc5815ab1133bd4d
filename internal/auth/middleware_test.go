package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddleware_NoKey(t *testing.T) {
	authenticator, err := NewAPIKeyAuthenticator("test-key")
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	mw := NewMiddleware(authenticator, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/calculate", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAPIKeyMiddleware_WrongKey(t *testing.T) {
	authenticator, err := NewAPIKeyAuthenticator("test-key")
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	mw := NewMiddleware(authenticator, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/calculate", nil)
	req.Header.Set(APIKeyHeader, "other-key")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAPIKeyMiddleware_ValidKey(t *testing.T) {
	authenticator, err := NewAPIKeyAuthenticator("test-key")
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	mw := NewMiddleware(authenticator, NewDefaultPolicy(nil, nil))

	var actor string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/calculate", nil)
	req.Header.Set(APIKeyHeader, "test-key")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if actor != "api-key" {
		t.Fatalf("expected actor api-key, got %q", actor)
	}
}

func TestMiddleware_ExemptPath(t *testing.T) {
	authenticator, err := NewAPIKeyAuthenticator("test-key")
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	mw := NewMiddleware(authenticator, NewDefaultPolicy([]string{"/healthz"}, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on exempt path, got %d", resp.Code)
	}
}

func TestJWTMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	authenticator, err := NewJWTAuthenticator(secret)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	mw := NewMiddleware(authenticator, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/calculate", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/usage/calculate", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, secret))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	authenticator, err := NewJWTAuthenticator(secret)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	mw := NewMiddleware(authenticator, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler())

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/calculate", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.Code)
	}
}

func mustToken(t *testing.T, secret []byte) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
