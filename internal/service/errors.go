package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/service/auth"
	"github.com/phrazzld/palette-api/internal/store"
)

// Sentinel errors returned by the services in addition to the domain and
// store sentinels they pass through. Callers check them with errors.Is and
// the API layer maps each to its own status code.
var (
	// ErrDeletedUser indicates the account was deleted. Deleted accounts
	// cannot log in again with the same email.
	ErrDeletedUser = errors.New("user account has been deleted")

	// ErrNotDiaryMember indicates the user has no membership row in the diary.
	ErrNotDiaryMember = errors.New("user is not a member of this diary")
)

// ServiceError wraps an unexpected failure with the service and operation it
// happened in. Expected conditions are returned as sentinels instead, and
// stay visible through Unwrap.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

// isExpected reports whether err is a client-caused condition that is logged
// at debug level rather than as a failure.
func isExpected(err error) bool {
	return errors.Is(err, ErrDeletedUser) ||
		errors.Is(err, ErrNotDiaryMember) ||
		store.IsNotFoundError(err) ||
		store.IsDuplicateError(err) ||
		domain.IsValidationError(err) ||
		domain.IsLifecycleConflict(err) ||
		errors.Is(err, auth.ErrInvalidRefreshToken) ||
		errors.Is(err, auth.ErrExpiredRefreshToken) ||
		errors.Is(err, auth.ErrWrongTokenType)
}
