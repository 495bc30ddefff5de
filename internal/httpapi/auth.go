package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"formcore/internal/core"
	"formcore/pkg/domain"
)

// identityClaims is the token payload the identity layer issues. Only the
// email claim matters to the access gate; roles are resolved from
// configuration, never trusted from the token.
type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Authenticator verifies bearer tokens and resolves them into actors.
type Authenticator struct {
	secret []byte
	policy *core.AccessPolicy
}

// NewAuthenticator builds an authenticator over an HMAC signing secret and
// the org access policy.
func NewAuthenticator(secret string, policy *core.AccessPolicy) *Authenticator {
	return &Authenticator{secret: []byte(secret), policy: policy}
}

// Authenticate extracts and verifies the request's bearer token and resolves
// the embedded email to an actor.
func (a *Authenticator) Authenticate(r *http.Request) (core.Actor, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return core.Actor{}, domain.Authorizationf("missing bearer token")
	}
	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return core.Actor{}, domain.Authorizationf("invalid bearer token")
	}
	return a.policy.Resolve(claims.Email)
}
