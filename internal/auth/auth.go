// Package auth resolves the current user from the session token issued by
// the hosted auth provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/notely/notely/internal/core"
)

type ctxKey struct{}

// Verifier checks HS256 session tokens. A verifier with no secret accepts
// every request as core.LocalUser.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// SingleUser reports whether the verifier runs without a secret
func (v *Verifier) SingleUser() bool {
	return len(v.secret) == 0
}

func (v *Verifier) signingKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

// Verify parses a token and returns its subject
func (v *Verifier) Verify(tokenStr string) (core.UserID, error) {
	token, err := jwt.Parse(tokenStr, v.signingKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", core.ErrUnauthorized)
	}
	return core.UserID(sub), nil
}

// Authenticate resolves the user of an HTTP request
func (v *Verifier) Authenticate(r *http.Request) (core.UserID, error) {
	if v.SingleUser() {
		return core.LocalUser, nil
	}

	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		// Browsers cannot set headers on websocket upgrades
		tokenStr = r.URL.Query().Get("access_token")
	}
	if tokenStr == "" {
		return "", fmt.Errorf("%w: missing bearer token", core.ErrUnauthorized)
	}
	return v.Verify(tokenStr)
}

// Middleware puts the authenticated user in the request context and rejects
// requests without a valid token
func (v *Verifier) Middleware(onError func(w http.ResponseWriter, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := v.Authenticate(r)
			if err != nil {
				onError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying user
func WithUser(ctx context.Context, user core.UserID) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the user stored by the middleware
func UserFrom(ctx context.Context) (core.UserID, error) {
	user, ok := ctx.Value(ctxKey{}).(core.UserID)
	if !ok || user == "" {
		return "", errors.New("no user in context")
	}
	return user, nil
}

// Mint issues a session token for user, for development and the CLI
func Mint(secret string, user core.UserID, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: auth secret", core.ErrConfigurationMissing)
	}
	if user == "" {
		return "", fmt.Errorf("%w: user id", core.ErrMissingRequired)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   string(user),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "notely",
	})
	return token.SignedString([]byte(secret))
}
