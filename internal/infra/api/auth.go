package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

// AuthManager mints and verifies workspace session tokens. A client
// exchanges the shared API key once for a token scoped to its workspace;
// every /api/v1 call after that carries the token.
type AuthManager struct {
	secret []byte
	apiKey string
	ttl    time.Duration
}

func NewAuthManager(secret, apiKey string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthManager{secret: []byte(secret), apiKey: apiKey, ttl: ttl}
}

type WorkspaceClaims struct {
	Workspace string `json:"workspace"`
	jwt.RegisteredClaims
}

// Exchange verifies the shared API key and mints a workspace token.
func (a *AuthManager) Exchange(apiKey, workspace string) (string, error) {
	if apiKey != a.apiKey || a.apiKey == "" {
		return "", errors.New("bad api key")
	}
	workspace = strings.TrimSpace(workspace)
	if workspace == "" {
		return "", errors.New("missing workspace")
	}
	now := time.Now()
	claims := WorkspaceClaims{
		Workspace: workspace,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   workspace,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseFromRequest reads the bearer token and returns its claims.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*WorkspaceClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("missing token")
	}
	claims := &WorkspaceClaims{}
	tkn, err := jwt.ParseWithClaims(strings.TrimSpace(hdr[7:]), claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Workspace == "" {
		return nil, errors.New("token has no workspace")
	}
	return claims, nil
}
