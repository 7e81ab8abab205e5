package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
)

// ColorStore provides read access to the seeded diary colors.
type ColorStore interface {
	// GetByID returns ErrColorNotFound if the color does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Color, error)

	// List returns every color ordered by ID.
	List(ctx context.Context) ([]domain.Color, error)

	WithTx(tx *sql.Tx) ColorStore
}

// DiaryStore defines the interface for diary data persistence.
type DiaryStore interface {
	// Create inserts a new diary.
	// Returns ErrInvitationCodeExists if another diary already uses the
	// invitation code; the caller may regenerate the code and retry.
	Create(ctx context.Context, diary *domain.Diary) error

	// GetByID retrieves a diary by its ID.
	// Returns ErrDiaryNotFound if the diary does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error)

	// GetByIDForUpdate is GetByID with a row lock held until the
	// surrounding transaction ends. Only meaningful inside WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Diary, error)

	// GetByInvitationCodeForUpdate locks and returns the diary owning code.
	// Returns ErrInvitationCodeNotFound if no diary carries the code.
	GetByInvitationCodeForUpdate(ctx context.Context, code string) (*domain.Diary, error)

	// ListByUser returns every diary the user has a membership row in,
	// including diaries the user left, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Diary, error)

	WithTx(tx *sql.Tx) DiaryStore
}

// DiaryGroupStore defines the interface for diary membership persistence.
type DiaryGroupStore interface {
	// Create inserts a membership row.
	// Returns ErrDiaryGroupExists if the user already has a row in the diary.
	Create(ctx context.Context, group *domain.DiaryGroup) error

	// ListByDiary returns all rows of a diary ordered by creation time.
	ListByDiary(ctx context.Context, diaryID uuid.UUID) ([]domain.DiaryGroup, error)

	// ListByUserDiaries returns, keyed by diary ID, all rows of every diary
	// the user has a row in. Rows of other members are included.
	ListByUserDiaries(ctx context.Context, userID uuid.UUID) (map[uuid.UUID][]domain.DiaryGroup, error)

	// MarkOuted flags the user's row in the diary as outed.
	// Returns ErrDiaryGroupNotFound if the user has no row in the diary.
	MarkOuted(ctx context.Context, diaryID, userID uuid.UUID) error

	// MarkAllOutedByUser flags every active row of the user as outed and
	// returns the number of rows changed.
	MarkAllOutedByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	WithTx(tx *sql.Tx) DiaryGroupStore
}
