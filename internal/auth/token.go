package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"agrodocs_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// refreshTokenBytes is the entropy of an opaque refresh token.
const refreshTokenBytes = 40

var (
	// ErrTokenExpired - signature verified but the expiry claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid - malformed token, wrong algorithm or bad signature.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the access-token payload. The token is self-contained: everything
// a handler needs about the principal travels in it.
type Claims struct {
	UserID     string   `json:"id"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	Name       string   `json:"name"`
	Properties []string `json:"properties"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access tokens with a single HS256 secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager fails when no secret is configured. Tokens must never be
// signed with a default or guessable secret, so this is checked at startup.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt signing secret is not configured")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured access-token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate issues a signed access token for the user.
func (m *TokenManager) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		Name:       user.Name,
		Properties: []string(user.Properties),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the token and returns its claims. Expired tokens are reported
// distinctly from invalid ones.
func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExtractBearerToken returns the token part of an Authorization header, or ""
// when the header is absent or not a bearer scheme.
func ExtractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// NewRefreshToken generates an opaque random refresh token. The value carries
// no claims; the registry holds its user and expiry server-side.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
