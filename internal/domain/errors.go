package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidSocialType is returned when a social login provider is not supported.
	ErrInvalidSocialType = errors.New("invalid social type")

	// ErrInvalidInvitationCode is returned when an invitation code is not
	// eight alphabetic characters.
	ErrInvalidInvitationCode = errors.New("invalid invitation code")

	// ErrInvalidHistoryPeriod is returned when a history period is out of range.
	ErrInvalidHistoryPeriod = errors.New("invalid history period")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Diary membership and history errors. These are the conflict class of the
// diary lifecycle and are surfaced to clients as distinct error codes.
var (
	// ErrDiaryEmpty indicates a diary without any membership rows.
	// A diary is always created together with its founder's group,
	// so this only happens when the data is inconsistent.
	ErrDiaryEmpty = errors.New("diary has no members")

	// ErrDiaryFull indicates the diary already has two members.
	ErrDiaryFull = errors.New("diary already has two members")

	// ErrMemberOuted indicates the user left (or was removed from) the diary
	// and cannot join it again.
	ErrMemberOuted = errors.New("user has left this diary")

	// ErrMemberExists indicates the user is already an active member of the diary.
	ErrMemberExists = errors.New("user is already a member of this diary")

	// ErrHistoryInProgress indicates the diary already has a history in progress.
	ErrHistoryInProgress = errors.New("diary already has a history in progress")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

var validationErrors = []error{
	ErrValidation,
	ErrInvalidID,
	ErrInvalidEmail,
	ErrInvalidSocialType,
	ErrInvalidInvitationCode,
	ErrInvalidHistoryPeriod,
	ErrEmptyUserID,
	ErrEmptyEmail,
	ErrDiaryIDEmpty,
	ErrDiaryColorEmpty,
	ErrDiaryTitleLong,
}

// IsValidationError reports whether err is caused by invalid input to a
// domain constructor or validator.
func IsValidationError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsLifecycleConflict reports whether err is one of the diary lifecycle
// rejections (full, outed, existing member, running history, empty diary).
func IsLifecycleConflict(err error) bool {
	return errors.Is(err, ErrDiaryEmpty) ||
		errors.Is(err, ErrDiaryFull) ||
		errors.Is(err, ErrMemberOuted) ||
		errors.Is(err, ErrMemberExists) ||
		errors.Is(err, ErrHistoryInProgress)
}
