package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// Claims is the JWT payload minted on successful auth. Sub is the ApiKey
// UUID; Jti is unique per token; Exp-Iat never exceeds the configured TTL.
type Claims struct {
	Sub string `json:"sub"`
	Jti string `json:"jti"`
	jwt.RegisteredClaims
}

// TokenMinter mints and validates bearer tokens for ApiKey subjects.
type TokenMinter struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenMinter builds a TokenMinter. secret must be at least 32 bytes;
// ttl is the configured token TTL (default 15 min).
func NewTokenMinter(secret []byte, ttl time.Duration) (*TokenMinter, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: jwt secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenMinter{secret: secret, ttl: ttl}, nil
}

// Mint issues a signed JWT for the given ApiKey subject.
func (m *TokenMinter) Mint(subjectID string) (string, Claims, error) {
	now := time.Now()
	claims := Claims{
		Sub: subjectID,
		Jti: newUUID(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Claims{}, gwerrors.NewInternalError("failed to sign token", err)
	}
	return signed, claims, nil
}

// TTLSeconds reports the configured TTL in whole seconds, for the
// `expires_in` field of the token response.
func (m *TokenMinter) TTLSeconds() int64 {
	return int64(m.ttl.Seconds())
}

// Parse verifies signature and expiry and returns the Claims. All failures
// collapse to Unauthorized: the caller never learns whether a token was
// malformed, expired, or forged.
func (m *TokenMinter) Parse(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, gwerrors.NewUnauthorizedError("invalid or expired token", nil)
	}
	return claims, nil
}
