package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"keygate/internal/shared/biztime"
)

// AdminClaims is the payload of an admin session token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokenService issues and verifies the bearer tokens protecting the
// admin API. Tokens are stateless; revocation happens by rotating the
// signing secret.
type AdminTokenService struct {
	secret     []byte
	expMinutes int
}

func NewAdminTokenService(secret string, expMinutes int) *AdminTokenService {
	return &AdminTokenService{
		secret:     []byte(secret),
		expMinutes: expMinutes,
	}
}

// Generate signs a fresh admin token and returns it with its lifetime in
// seconds.
func (s *AdminTokenService) Generate() (string, int64, error) {
	now := biztime.NowUTC()

	claims := &AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign admin token: %w", err)
	}

	return signed, int64(s.expMinutes * 60), nil
}

// Verify parses and validates an admin token.
func (s *AdminTokenService) Verify(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Role != "admin" {
		return nil, fmt.Errorf("invalid token role")
	}

	return claims, nil
}
