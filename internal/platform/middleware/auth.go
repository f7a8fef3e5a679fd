package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/platform/httputil"
	"gazette/pkg/requestcontext"
)

// TokenValidator defines the interface for validating reviewer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	ReviewerID string
}

// RequireAuth guards write endpoints. Read-only verification reports stay
// open; linking and verification actions need an authenticated reviewer.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("token rejected",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			ctx := requestcontext.WithReviewer(r.Context(), claims.ReviewerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
