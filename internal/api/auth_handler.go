package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/service"
	"github.com/phrazzld/palette-api/internal/service/auth"
)

// AuthHandler handles login, logout and access token renewal.
type AuthHandler struct {
	users   service.UserService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, cookies CookieConfig, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:   users,
		cookies: cookies,
		logger:  log.With("component", "auth_handler"),
	}
}

// Login handles POST /login. New emails are registered on first login.
// The refresh token is returned in the PTOKEN_REFRESH cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	socialType, err := domain.ParseSocialType(req.SocialType)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, socialType)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	h.cookies.setRefreshCookie(w, result.Tokens.RefreshToken)

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user logged in",
		"user_id", result.User.ID,
		"is_registered", result.IsRegistered)

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		UserID:       result.User.ID,
		AccessToken:  result.Tokens.AccessToken,
		IsRegistered: result.IsRegistered,
		SocialTypes:  socialTypeStrings(result.SocialTypes),
	})
}

// Logout handles GET /logout. It revokes the refresh token when the cookie
// is present and always expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), refreshTokenFromRequest(r)); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}

	h.cookies.expireRefreshCookie(w)
	shared.RespondNoContent(w)
}

// RefreshToken handles POST /token, issuing a new access token from the
// refresh cookie. The refresh token itself is not rotated.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)
	if refreshToken == "" {
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return
	}

	accessToken, err := h.users.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{AccessToken: accessToken})
}
