package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrDiaryNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrColorNotFound indicates that the requested color does not exist in the store.
	ErrColorNotFound = fmt.Errorf("%w: color", ErrNotFound)

	// ErrDiaryNotFound indicates that the requested diary does not exist in the store.
	ErrDiaryNotFound = fmt.Errorf("%w: diary", ErrNotFound)

	// ErrInvitationCodeNotFound indicates that no diary carries the given invitation code.
	ErrInvitationCodeNotFound = fmt.Errorf("%w: invitation code", ErrNotFound)

	// ErrHistoryNotFound indicates that the requested history does not exist in the store.
	ErrHistoryNotFound = fmt.Errorf("%w: history", ErrNotFound)

	// ErrRefreshTokenNotFound indicates that no stored refresh token matches.
	ErrRefreshTokenNotFound = fmt.Errorf("%w: refresh token", ErrNotFound)

	// ErrDiaryGroupNotFound indicates that the user has no membership row in the diary.
	ErrDiaryGroupNotFound = fmt.Errorf("%w: diary group", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrInvitationCodeExists indicates that the generated invitation code is
	// already used by another diary.
	ErrInvitationCodeExists = fmt.Errorf("%w: invitation code", ErrDuplicate)

	// ErrDiaryGroupExists indicates that the user already has a row in the diary.
	ErrDiaryGroupExists = fmt.Errorf("%w: diary group", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// All entity-specific not found errors wrap ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "diary")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
