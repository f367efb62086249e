package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-jwt-secret-32bytes-minimum!"

// cheapHash keeps the bcrypt work factor low so the tests stay fast.
func cheapHash(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func TestHashKey_RoundTrip(t *testing.T) {
	hash, err := HashKey("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}
	svc := NewAuthService(testSecret, 24, []APIKey{{Name: "admin", Hash: hash, Role: RoleAdmin}})

	k, err := svc.AuthenticateKey("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("AuthenticateKey: %v", err)
	}
	if k.Role != RoleAdmin {
		t.Errorf("Role: got %q, want %q", k.Role, RoleAdmin)
	}
}

func TestAuthenticateKey_SelectsRole(t *testing.T) {
	svc := NewAuthService(testSecret, 24, []APIKey{
		{Name: "admin", Hash: cheapHash(t, "admin-key"), Role: RoleAdmin},
		{Name: "reader", Hash: cheapHash(t, "read-key"), Role: RoleReader},
	})

	k, err := svc.AuthenticateKey("read-key")
	if err != nil {
		t.Fatalf("AuthenticateKey: %v", err)
	}
	if k.Name != "reader" || k.Role != RoleReader {
		t.Errorf("got %+v, want reader key", k)
	}

	if _, err := svc.AuthenticateKey("wrong-key"); !errors.Is(err, ErrUnknownAPIKey) {
		t.Errorf("wrong key: got %v, want ErrUnknownAPIKey", err)
	}
	if _, err := svc.AuthenticateKey(""); !errors.Is(err, ErrUnknownAPIKey) {
		t.Errorf("empty key: got %v, want ErrUnknownAPIKey", err)
	}
}

func TestNewAuthService_SkipsEmptyHashes(t *testing.T) {
	svc := NewAuthService(testSecret, 24, []APIKey{{Name: "admin", Role: RoleAdmin}})
	if svc.HasKeys() {
		t.Error("HasKeys should be false when no hash is configured")
	}
}

func TestAuthService_SignAndVerifyToken(t *testing.T) {
	svc := NewAuthService(testSecret, 24, nil)

	tokenStr, exp, err := svc.SignToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if tokenStr == "" {
		t.Fatal("SignToken returned empty string")
	}
	if d := time.Until(exp); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("expiry %v not ~24h away", d)
	}

	claims, err := svc.VerifyToken(tokenStr)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != "admin" {
		t.Errorf("Subject: got %q, want %q", claims.Subject, "admin")
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Role: got %q, want %q", claims.Role, RoleAdmin)
	}
	if claims.Issuer != "jdgen" {
		t.Errorf("Issuer: got %q, want %q", claims.Issuer, "jdgen")
	}
}

func signRaw(t *testing.T, claims AuthClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestAuthService_VerifyToken_Expired(t *testing.T) {
	svc := NewAuthService(testSecret, 24, nil)

	now := time.Now().UTC().Add(-25 * time.Hour)
	tokenStr := signRaw(t, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
			Issuer:    "jdgen",
		},
		Role: RoleAdmin,
	})

	if _, err := svc.VerifyToken(tokenStr); err == nil {
		t.Error("VerifyToken should reject expired token")
	}
}

func TestAuthService_VerifyToken_WrongSecret(t *testing.T) {
	svc1 := NewAuthService("secret-one-32bytes-minimum!!!!!", 24, nil)
	svc2 := NewAuthService("secret-two-32bytes-minimum!!!!!", 24, nil)

	tokenStr, _, err := svc1.SignToken("admin", RoleReader)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if _, err := svc2.VerifyToken(tokenStr); err == nil {
		t.Error("VerifyToken should reject token signed with different secret")
	}
}

func TestAuthService_VerifyToken_InvalidFormat(t *testing.T) {
	svc := NewAuthService(testSecret, 24, nil)

	if _, err := svc.VerifyToken("not-a-jwt"); err == nil {
		t.Error("VerifyToken should reject invalid token format")
	}
	if _, err := svc.VerifyToken(""); err == nil {
		t.Error("VerifyToken should reject empty token")
	}
}

func TestAuthService_VerifyToken_BadClaims(t *testing.T) {
	svc := NewAuthService(testSecret, 24, nil)
	valid := func() AuthClaims {
		return AuthClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin",
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    "jdgen",
			},
			Role: RoleAdmin,
		}
	}

	tests := []struct {
		name   string
		mutate func(*AuthClaims)
	}{
		{"missing subject", func(c *AuthClaims) { c.Subject = "" }},
		{"missing role", func(c *AuthClaims) { c.Role = "" }},
		{"unknown role", func(c *AuthClaims) { c.Role = "superuser" }},
		{"wrong issuer", func(c *AuthClaims) { c.Issuer = "pro-rag" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if _, err := svc.VerifyToken(signRaw(t, c)); err == nil {
				t.Errorf("VerifyToken should reject token with %s", tt.name)
			}
		})
	}
}

func TestAuthService_VerifyToken_WrongSigningMethod(t *testing.T) {
	svc := NewAuthService(testSecret, 24, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "admin",
		"role": RoleAdmin,
		"iss":  "jdgen",
		"exp":  time.Now().Add(1 * time.Hour).Unix(),
	})
	tokenStr, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	if _, err := svc.VerifyToken(tokenStr); err == nil {
		t.Error("VerifyToken should reject token with 'none' signing method")
	}
}

func TestAuthService_DefaultExpiry(t *testing.T) {
	svc := NewAuthService(testSecret, 0, nil)
	if svc.jwtExpiryH != 24 {
		t.Errorf("expected default expiry 24h, got %d", svc.jwtExpiryH)
	}

	svc = NewAuthService(testSecret, -1, nil)
	if svc.jwtExpiryH != 24 {
		t.Errorf("expected default expiry 24h, got %d", svc.jwtExpiryH)
	}
}
