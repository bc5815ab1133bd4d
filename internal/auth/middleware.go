package auth

import "net/http"

// Middleware applies the configured authenticator to non-exempt requests.
type Middleware struct {
	Authenticator Authenticator
	Policy        Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(authenticator Authenticator, policy Policy) *Middleware {
	return &Middleware{Authenticator: authenticator, Policy: policy}
}

// Wrap rejects unauthenticated requests before any calculation runs.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		if m.Authenticator == nil {
			http.Error(w, "auth not configured", http.StatusUnauthorized)
			return
		}
		actor, err := m.Authenticator.Authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}
