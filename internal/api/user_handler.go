package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/service"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	users   service.UserService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, cookies CookieConfig, log *slog.Logger) *UserHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UserHandler{
		users:   users,
		cookies: cookies,
		logger:  log.With("component", "user_handler"),
	}
}

// GetUser handles GET /user.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// AgreeToTerms handles PATCH /user/terms.
func (h *UserHandler) AgreeToTerms(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.AgreeToTerms(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to agree to terms")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// DeleteAccount handles DELETE /user. The account is soft-deleted, the
// user leaves every diary and the refresh cookie is expired.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account deleted", "user_id", userID)

	h.cookies.expireRefreshCookie(w)
	shared.RespondNoContent(w)
}
