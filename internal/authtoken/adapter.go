package authtoken

import (
	"gazette/internal/platform/middleware"
)

// MiddlewareAdapter bridges the JWT service onto the auth middleware's
// TokenValidator interface.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{ReviewerID: claims.ReviewerID}, nil
}
