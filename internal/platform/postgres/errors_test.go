package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/palette-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound error
		want     error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows default", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "no rows specific", err: sql.ErrNoRows, notFound: store.ErrDiaryNotFound, want: store.ErrDiaryNotFound},
		{
			name: "wrapped no rows",
			err:  fmt.Errorf("scan: %w", sql.ErrNoRows), notFound: store.ErrUserNotFound,
			want: store.ErrUserNotFound,
		},
		{name: "email taken", err: newPgError(uniqueViolationCode, "users_email_key"), want: store.ErrEmailExists},
		{
			name: "invitation code taken",
			err:  newPgError(uniqueViolationCode, "diaries_invitation_code_key"),
			want: store.ErrInvitationCodeExists,
		},
		{
			name: "duplicate membership",
			err:  newPgError(uniqueViolationCode, "diary_groups_diary_id_user_id_key"),
			want: store.ErrDiaryGroupExists,
		},
		{name: "unknown color", err: newPgError(foreignKeyViolationCode, "diaries_color_id_fkey"), want: store.ErrColorNotFound},
		{name: "generic unique", err: newPgError(uniqueViolationCode, "other_key"), want: store.ErrDuplicate},
		{name: "generic fk", err: newPgError(foreignKeyViolationCode, "other_fkey"), want: store.ErrInvalidEntity},
		{name: "check", err: newPgError(checkViolationCode, "histories_period_check"), want: store.ErrInvalidEntity},
		{name: "not null", err: newPgError(notNullViolationCode, ""), want: store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err, tt.notFound)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	original := errors.New("connection reset by peer")
	assert.Same(t, original, MapError(original, store.ErrUserNotFound))

	serialization := newPgError("40001", "")
	assert.ErrorIs(t, MapError(serialization, nil), serialization)
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(newPgError(uniqueViolationCode, "")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", newPgError(uniqueViolationCode, ""))))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))

	assert.True(t, IsForeignKeyViolation(newPgError(foreignKeyViolationCode, "")))
	assert.False(t, IsForeignKeyViolation(newPgError(uniqueViolationCode, "")))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, checkRowsAffected(sqlmock.NewResult(0, 1), store.ErrUserNotFound))
	assert.ErrorIs(t, checkRowsAffected(sqlmock.NewResult(0, 0), store.ErrUserNotFound), store.ErrUserNotFound)

	failing := sqlmock.NewErrorResult(errors.New("driver failure"))
	err := checkRowsAffected(failing, store.ErrUserNotFound)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrUserNotFound)
}
