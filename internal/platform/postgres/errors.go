package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Constraint names declared by the migrations. Violations of these map to
// entity-specific store errors instead of the generic ones.
var constraintErrors = map[string]error{
	"users_email_key":                   store.ErrEmailExists,
	"diaries_invitation_code_key":       store.ErrInvitationCodeExists,
	"diary_groups_diary_id_user_id_key": store.ErrDiaryGroupExists,
	"diaries_color_id_fkey":             store.ErrColorNotFound,
	"diary_groups_user_id_fkey":         store.ErrUserNotFound,
	"diary_groups_diary_id_fkey":        store.ErrDiaryNotFound,
	"histories_diary_id_fkey":           store.ErrDiaryNotFound,
	"refresh_tokens_user_id_fkey":       store.ErrUserNotFound,
}

// MapError maps a database error to an appropriate store error.
// sql.ErrNoRows becomes notFound (store.ErrNotFound when notFound is nil);
// constraint violations on known constraints become their entity-specific
// errors. The original error is kept in the chain for debugging; callers
// must never send it to clients.
func MapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		if notFound == nil {
			notFound = store.ErrNotFound
		}
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if specific, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return fmt.Errorf("%w: %v", specific, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode, checkViolationCode:
		return fmt.Errorf(
			"%w: constraint violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ConstraintName,
			err,
		)
	case notNullViolationCode:
		return fmt.Errorf(
			"%w: not null violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ColumnName,
			err,
		)
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// checkRowsAffected returns notFound when an UPDATE or DELETE touched no row.
func checkRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
