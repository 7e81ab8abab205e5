package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/service"
	"github.com/phrazzld/palette-api/internal/service/auth"
	"github.com/phrazzld/palette-api/internal/store"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// apiError is the client-facing form of a known error.
type apiError struct {
	status  int
	code    string
	message string
}

// errorMappings is matched in order with errors.Is, so more specific
// sentinels must precede the ones they wrap.
var errorMappings = []struct {
	target error
	apiError
}{
	{service.ErrDeletedUser, apiError{http.StatusForbidden, shared.CodeDeletedUser, "User account has been deleted"}},
	{service.ErrNotDiaryMember, apiError{http.StatusForbidden, shared.CodeNotDiaryMember, "Not a member of this diary"}},
	{store.ErrDiaryGroupNotFound, apiError{http.StatusForbidden, shared.CodeNotDiaryMember, "Not a member of this diary"}},

	{store.ErrUserNotFound, apiError{http.StatusNotFound, shared.CodeUserNotFound, "User not found"}},
	{store.ErrColorNotFound, apiError{http.StatusNotFound, shared.CodeColorNotFound, "Color not found"}},
	{store.ErrDiaryNotFound, apiError{http.StatusNotFound, shared.CodeDiaryNotFound, "Diary not found"}},
	{domain.ErrDiaryEmpty, apiError{http.StatusNotFound, shared.CodeDiaryNotFound, "Diary not found"}},
	{store.ErrInvitationCodeNotFound, apiError{http.StatusNotFound, shared.CodeInviteCodeNotFound, "Invitation code not found"}},
	{store.ErrHistoryNotFound, apiError{http.StatusNotFound, shared.CodeHistoryNotFound, "History not found"}},

	{domain.ErrDiaryFull, apiError{http.StatusConflict, shared.CodeDiaryFull, "Diary already has two members"}},
	{domain.ErrMemberExists, apiError{http.StatusConflict, shared.CodeMemberExists, "User is already a member of this diary"}},
	{store.ErrDiaryGroupExists, apiError{http.StatusConflict, shared.CodeMemberExists, "User is already a member of this diary"}},
	{domain.ErrMemberOuted, apiError{http.StatusConflict, shared.CodeMemberOuted, "User has left this diary"}},
	{domain.ErrHistoryInProgress, apiError{http.StatusConflict, shared.CodeProgressedHistory, "A history is already in progress"}},

	{auth.ErrExpiredToken, apiError{http.StatusUnauthorized, shared.CodeExpiredToken, "Token expired"}},
	{auth.ErrExpiredRefreshToken, apiError{http.StatusUnauthorized, shared.CodeExpiredToken, "Refresh token expired"}},
	{auth.ErrMissingToken, apiError{http.StatusUnauthorized, shared.CodeMissingToken, "Authentication required"}},
	{domain.ErrUnauthorized, apiError{http.StatusUnauthorized, shared.CodeMissingToken, "Authentication required"}},
	{auth.ErrInvalidToken, apiError{http.StatusUnauthorized, shared.CodeInvalidToken, "Invalid token"}},
	{auth.ErrTokenNotYetValid, apiError{http.StatusUnauthorized, shared.CodeInvalidToken, "Invalid token"}},
	{auth.ErrWrongTokenType, apiError{http.StatusUnauthorized, shared.CodeInvalidToken, "Invalid token"}},
	{auth.ErrInvalidRefreshToken, apiError{http.StatusUnauthorized, shared.CodeInvalidToken, "Invalid refresh token"}},
}

var internalError = apiError{http.StatusInternalServerError, shared.CodeInternal, unexpectedErrorMessage}

// classify finds the client-facing form of err.
// Unknown errors are reported as internal errors.
func classify(err error) apiError {
	if err == nil {
		return internalError
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.apiError
		}
	}
	if isValidationFailure(err) {
		return apiError{http.StatusBadRequest, shared.CodeValidation, SanitizeValidationError(err)}
	}
	return internalError
}

func isValidationFailure(err error) bool {
	var verrs validator.ValidationErrors
	return domain.IsValidationError(err) ||
		errors.As(err, &verrs) ||
		errors.Is(err, store.ErrInvalidEntity) ||
		errors.Is(err, shared.ErrEmptyBody)
}

// MapErrorToStatusCode maps known errors to HTTP status codes.
// Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	return classify(err).status
}

// ErrorCode returns the error code clients receive for err.
func ErrorCode(err error) string {
	return classify(err).code
}

// GetSafeErrorMessage returns a message for err that is safe to show to
// clients. It never includes internal details.
func GetSafeErrorMessage(err error) string {
	return classify(err).message
}

// SanitizeValidationError turns a validation failure into a short message
// naming the first invalid field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	}

	switch {
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email: invalid email format"
	case errors.Is(err, domain.ErrInvalidSocialType):
		return "Invalid social_type: unsupported provider"
	case errors.Is(err, domain.ErrInvalidInvitationCode):
		return "Invalid invitation_code: must be 8 letters"
	case errors.Is(err, domain.ErrInvalidHistoryPeriod):
		return "Invalid period_days: must be between 1 and 30"
	case errors.Is(err, domain.ErrDiaryTitleLong):
		return "Invalid title: too long"
	}
	return "Validation error"
}

// jsonFieldName converts a Go field name such as ColorID to color_id.
func jsonFieldName(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte", "gt":
		return "below minimum"
	case "max", "lte", "lt":
		return "exceeds maximum"
	case "len":
		return "wrong length"
	case "alpha":
		return "must contain only letters"
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err.
// fallbackMessage replaces the generic message of internal errors when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	e := classify(err)
	message := e.message
	if e.status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if e.status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, e.status, e.code, message, err, opts...)
}
