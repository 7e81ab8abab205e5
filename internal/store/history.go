package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
)

// HistoryStore defines the interface for history persistence.
type HistoryStore interface {
	// Create inserts a new history.
	Create(ctx context.Context, history *domain.History) error

	// GetByID returns ErrHistoryNotFound if the history does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.History, error)

	// GetInProgress returns the history of the diary that is running at now,
	// or nil without error when there is none.
	GetInProgress(ctx context.Context, diaryID uuid.UUID, now time.Time) (*domain.History, error)

	// ListInProgressByUser returns, keyed by diary ID, the running history of
	// every diary the user has a row in. Diaries without one are absent.
	ListInProgressByUser(ctx context.Context, userID uuid.UUID, now time.Time) (map[uuid.UUID]*domain.History, error)

	// Close sets closed_at on a history that is not closed yet.
	// Closing an already closed history is a no-op.
	// Returns ErrHistoryNotFound if the history does not exist.
	Close(ctx context.Context, id uuid.UUID, at time.Time) error

	WithTx(tx *sql.Tx) HistoryStore
}
