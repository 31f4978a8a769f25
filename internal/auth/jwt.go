package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is the private type for context values set by this package.
type contextKey string

// PrincipalKey is the context key under which the authenticated email is stored.
const PrincipalKey = contextKey("principal")

// TokenUtil signs and verifies the JWTs handed to clients. Tokens carry the
// user's email as subject and nothing else; they are opaque values to the
// rest of the system.
type TokenUtil struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenUtil creates a TokenUtil signing with the given secret.
func NewTokenUtil(secret string, ttl time.Duration) *TokenUtil {
	return &TokenUtil{secret: []byte(secret), ttl: ttl}
}

// Generate creates a new signed token for the given email.
func (t *TokenUtil) Generate(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token string and returns the email it was issued for.
func (t *TokenUtil) Parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}

// Middleware creates a middleware for protecting routes. Requests without a
// valid token are rejected before any handler runs.
func (t *TokenUtil) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try to get the token from the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			// 2. If not in header, fall back to the cookie
			if tokenStr == "" {
				cookie, err := r.Cookie("token")
				if err != nil {
					http.Error(w, "Missing auth token", http.StatusUnauthorized)
					return
				}
				tokenStr = cookie.Value
			}

			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			email, err := t.Parse(tokenStr)
			if err != nil {
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			// Pass the principal down via context
			ctx := context.WithValue(r.Context(), PrincipalKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated email set by Middleware.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(PrincipalKey).(string)
	return email, ok
}
