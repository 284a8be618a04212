// File: internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/config"
	"estatehub_backend/internal/shared"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// jwtClaims is the on-the-wire claim set.
type jwtClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTTokenService issues and validates HS256 tokens.
type JWTTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTTokenService creates the token service from config.
func NewJWTTokenService(cfg *config.Config) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    cfg.TokenTTL(),
	}
}

// GenerateToken issues a signed token for the user.
func (s *JWTTokenService) GenerateToken(userID uuid.UUID, email string, role common.Role) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Email: email,
		Role:  role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies the signature and expiry and maps the claims onto
// shared.Claims.
func (s *JWTTokenService) ValidateToken(tokenString string) (*shared.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New("invalid subject claim")
	}
	role, ok := common.ParseRole(claims.Role)
	if !ok {
		return nil, errors.New("unknown role claim")
	}

	return &shared.Claims{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
