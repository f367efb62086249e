package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles carried in tokens and granted to API keys.
const (
	RoleAdmin  = "admin"
	RoleReader = "reader"
)

const tokenIssuer = "jdgen"

// ErrUnknownAPIKey is returned when a key matches no configured hash.
var ErrUnknownAPIKey = errors.New("unknown API key")

// APIKey is a configured key, stored only as its bcrypt hash.
type APIKey struct {
	Name string
	Hash string
	Role string
}

// AuthClaims are the JWT claims issued for an authenticated API key.
type AuthClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService checks API keys and signs/verifies JWTs.
type AuthService struct {
	jwtSecret  []byte
	jwtExpiryH int
	bcryptCost int
	keys       []APIKey
}

// NewAuthService creates a new AuthService.
// jwtSecret is the HMAC-SHA256 signing key.
// expiryHours is the JWT token lifetime in hours.
func NewAuthService(jwtSecret string, expiryHours int, keys []APIKey) *AuthService {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	var usable []APIKey
	for _, k := range keys {
		if k.Hash != "" {
			usable = append(usable, k)
		}
	}
	return &AuthService{
		jwtSecret:  []byte(jwtSecret),
		jwtExpiryH: expiryHours,
		bcryptCost: bcrypt.DefaultCost,
		keys:       usable,
	}
}

// HasKeys reports whether any API key is configured.
func (s *AuthService) HasKeys() bool {
	return len(s.keys) > 0
}

// AuthenticateKey returns the configured key that key matches.
func (s *AuthService) AuthenticateKey(key string) (APIKey, error) {
	if key == "" {
		return APIKey{}, ErrUnknownAPIKey
	}
	for _, k := range s.keys {
		if bcrypt.CompareHashAndPassword([]byte(k.Hash), []byte(key)) == nil {
			return k, nil
		}
	}
	return APIKey{}, ErrUnknownAPIKey
}

// HashKey generates a bcrypt hash for an API key.
func HashKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash key: %w", err)
	}
	return string(h), nil
}

// SignToken creates a signed JWT for subject with role, returning the token
// and its expiry.
func (s *AuthService) SignToken(subject, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(s.jwtExpiryH) * time.Hour)
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    tokenIssuer,
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign JWT: %w", err)
	}
	return signed, exp, nil
}

// VerifyToken parses and validates a JWT string, returning the claims.
func (s *AuthService) VerifyToken(tokenStr string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing sub")
	}
	if claims.Role != RoleAdmin && claims.Role != RoleReader {
		return nil, fmt.Errorf("token has unknown role %q", claims.Role)
	}
	return claims, nil
}
