package auth

import (
	"crypto/hmac"
	"errors"
	"net/http"
)

// APIKeyHeader carries the pre-shared key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator matches a pre-shared key against server configuration.
type APIKeyAuthenticator struct {
	key []byte
}

// NewAPIKeyAuthenticator constructs the authenticator. The key is passed in
// explicitly at construction; there is no ambient settings lookup.
func NewAPIKeyAuthenticator(key string) (*APIKeyAuthenticator, error) {
	if key == "" {
		return nil, errors.New("auth: empty api key")
	}
	return &APIKeyAuthenticator{key: []byte(key)}, nil
}

// Authenticate implements Authenticator using a constant-time comparison.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (string, error) {
	provided := r.Header.Get(APIKeyHeader)
	if provided == "" {
		return "", ErrUnauthorized
	}
	if !hmac.Equal([]byte(provided), a.key) {
		return "", ErrUnauthorized
	}
	return "api-key", nil
}
