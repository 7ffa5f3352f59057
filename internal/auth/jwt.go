package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// JWTManager verifies identity tokens presented by interactive clients and
// issues them for development and tooling.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// IssueIdentityToken creates a signed HS256 JWT for identity.
func (m *JWTManager) IssueIdentityToken(identity domain.Identity) (string, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return "", fmt.Errorf("identity subject is empty")
	}

	now := time.Now()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: identity.DisplayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// VerifyIdentityToken parses and validates an identity token.
// Every failure wraps domain.ErrUnauthorized.
func (m *JWTManager) VerifyIdentityToken(tokenString string) (domain.Identity, error) {
	if tokenString == "" {
		return domain.Identity{}, fmt.Errorf("token is empty: %w", domain.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return domain.Identity{}, fmt.Errorf("parse token: %w: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return domain.Identity{Subject: claims.Subject, DisplayName: name}, nil
}
