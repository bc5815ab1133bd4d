package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims accepted by this service.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HS256 bearer tokens. It is the stronger
// replacement scheme for the pre-shared key.
type JWTAuthenticator struct {
	secret []byte
}

// NewJWTAuthenticator constructs the authenticator.
func NewJWTAuthenticator(secret []byte) (*JWTAuthenticator, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty jwt secret")
	}
	return &JWTAuthenticator{secret: secret}, nil
}

// Authenticate implements Authenticator against the Authorization header.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (string, error) {
	claims, err := ParseJWT(extractBearer(r), a.secret)
	if err != nil {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// ParseJWT validates a JWT and returns claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("auth: empty token")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("auth: missing subject")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("auth: token expired")
	}
	return claims, nil
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
