package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims extends jwt.RegisteredClaims with the cache prefix scope the token
// is allowed to operate under.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

type Manager struct {
	signingKey []byte
	issuer     string
	defaultTTL time.Duration
}

func NewManager(signingKey string, issuer string, defaultTTL time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		defaultTTL: defaultTTL,
	}
}

// Generate creates a signed token scoped to the given cache key prefix.
// A zero ttl falls back to the manager default.
func (m *Manager) Generate(scope string, ttl time.Duration) (string, error) {
	if scope == "" {
		return "", errors.New("empty scope")
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   scope,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		Scope: scope,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.signingKey)
}

// Validate parses and validates a token string, returning its claims.
func (m *Manager) Validate(tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Issuer != m.issuer {
		return nil, errors.New("invalid issuer")
	}
	if claims.Scope == "" {
		return nil, errors.New("missing scope")
	}

	return claims, nil
}

// Allows reports whether a token scope covers the given cache key.
// A scope of "*" covers everything; otherwise the key must sit under the
// scope prefix.
func (c *Claims) Allows(key string) bool {
	if c.Scope == "*" {
		return true
	}
	return strings.HasPrefix(key, c.Scope)
}
