package usecases

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/golang-jwt/jwt/v5"
)

// Structured token failures. Signature is checked before expiry, so a
// tampered-but-expired token reports ErrTokenBadSignature.
var (
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenBadSignature = errors.New("token signature is invalid")
	ErrTokenExpired      = errors.New("token has expired")
)

// TokenClaims is the validated claim set of a bearer token.
type TokenClaims struct {
	Email     string
	CompanyID int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and validates bearer tokens with HMAC-SHA-256.
// Claims carry the email and the user's primary company id; /auth/me answers
// from them, while the ownership check still queries the company store.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  interfaces.Clock
}

// NewTokenService decodes the base64 secret and fails when it is shorter
// than 32 bytes — a weak signing key is a startup error, not a warning.
func NewTokenService(base64Secret string, ttl time.Duration, clock interfaces.Clock) (*TokenService, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("jwt secret is not valid base64: %w", err)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must decode to at least 32 bytes, got %d", len(secret))
	}
	return &TokenService{secret: secret, ttl: ttl, clock: clock}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token containing the email and primary company id.
func (s *TokenService) Issue(email string, companyID int64) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       email,
		"companyId": companyID,
		"type":      "access",
		"iat":       now.Unix(),
		"exp":       now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// Parse verifies the signature first, then expiry, and returns the claims.
func (s *TokenService) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, ErrTokenMalformed
	}
	companyID, _ := claims["companyId"].(float64) // JSON numbers decode as float64

	out := &TokenClaims{Email: email, CompanyID: int64(companyID)}
	if iat, ok := claims["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// IsValidFor reports whether the token parses cleanly and belongs to the
// expected email.
func (s *TokenService) IsValidFor(tokenString, email string) bool {
	claims, err := s.Parse(tokenString)
	return err == nil && claims.Email == email
}

// RemainingTTL returns how long the token stays valid, or zero for tokens
// that are expired or unreadable.
func (s *TokenService) RemainingTTL(tokenString string) time.Duration {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return 0
	}
	remaining := claims.ExpiresAt.Sub(s.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
