package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/service/auth"
)

// AccessTokenValidator validates bearer access tokens.
// auth.TokenService satisfies it.
type AccessTokenValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	tokens AccessTokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokens AccessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the access token from the Authorization header and
// adds the user ID and email to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeMissingToken, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeInvalidToken, "Invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateAccess(r.Context(), strings.TrimSpace(token))
		if err != nil {
			respondAuthError(w, r, err)
			return
		}

		ctx := shared.WithUser(r.Context(), claims.UserID, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, shared.CodeExpiredToken, "Token expired", err)
	case errors.Is(err, auth.ErrMissingToken):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, shared.CodeMissingToken, "Authorization header required", err)
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, shared.CodeInvalidToken, "Invalid token", err,
			shared.WithElevatedLogLevel())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, shared.CodeInternal, "Authentication error", err)
	}
}
