// Package authtoken issues and validates the reviewer bearer tokens that
// guard the engine's write endpoints.
package authtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "gazette/pkg/domain-errors"
)

// Claims are the JWT claims carried by a reviewer access token.
type Claims struct {
	ReviewerID string `json:"reviewer_id"`
	jwt.RegisteredClaims
}

// JWTService signs and validates reviewer tokens with a shared HS256 key.
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// GenerateToken mints a signed reviewer token.
func (s *JWTService) GenerateToken(reviewerID string, expiresIn time.Duration) (string, error) {
	if reviewerID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "reviewer id is required")
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ReviewerID: reviewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a reviewer token.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.ReviewerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no reviewer id")
	}
	return claims, nil
}
