package auth

import (
	"errors"
	"net/http"
)

// ErrUnauthorized is returned when a request carries no valid credential.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Authenticator is the capability check guarding calculation endpoints. It is
// a single predicate so the scheme can be swapped without touching handlers.
type Authenticator interface {
	// Authenticate returns the actor identity for a valid credential or
	// ErrUnauthorized.
	Authenticate(r *http.Request) (string, error)
}
