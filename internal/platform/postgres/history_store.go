package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgresHistoryStore implements store.HistoryStore.
type PostgresHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHistoryStore creates a history store over db.
func NewPostgresHistoryStore(db store.DBTX, logger *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresHistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// WithTx implements store.HistoryStore.WithTx
func (s *PostgresHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return &PostgresHistoryStore{db: tx, logger: s.logger}
}

const historyColumns = `h.id, h.diary_id, h.started_at, h.ended_at, h.closed_at, h.created_at`

// Create implements store.HistoryStore.Create
func (s *PostgresHistoryStore) Create(ctx context.Context, h *domain.History) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO histories (id, diary_id, started_at, ended_at, closed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.ID, h.DiaryID, h.StartedAt, h.EndedAt, h.ClosedAt, h.CreatedAt,
	)
	if err != nil {
		return MapError(err, nil)
	}

	s.logger.Debug("history created",
		slog.String("history_id", h.ID.String()),
		slog.String("diary_id", h.DiaryID.String()),
		slog.Time("ended_at", h.EndedAt))
	return nil
}

// GetByID implements store.HistoryStore.GetByID
func (s *PostgresHistoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.History, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM histories h WHERE h.id = $1`, id)
	h, err := scanHistory(row.Scan)
	if err != nil {
		return nil, MapError(err, store.ErrHistoryNotFound)
	}
	return h, nil
}

// GetInProgress implements store.HistoryStore.GetInProgress
func (s *PostgresHistoryStore) GetInProgress(
	ctx context.Context,
	diaryID uuid.UUID,
	now time.Time,
) (*domain.History, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+` FROM histories h
		WHERE h.diary_id = $1 AND h.closed_at IS NULL AND h.ended_at > $2
		ORDER BY h.started_at DESC
		LIMIT 1`,
		diaryID, now,
	)
	h, err := scanHistory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, MapError(err, nil)
	}
	return h, nil
}

// ListInProgressByUser implements store.HistoryStore.ListInProgressByUser
func (s *PostgresHistoryStore) ListInProgressByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (map[uuid.UUID]*domain.History, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+historyColumns+` FROM histories h
		JOIN diary_groups g ON g.diary_id = h.diary_id
		WHERE g.user_id = $1 AND h.closed_at IS NULL AND h.ended_at > $2
		ORDER BY h.started_at`,
		userID, now,
	)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	// Later rows win so each diary maps to its most recently started history.
	byDiary := make(map[uuid.UUID]*domain.History)
	for rows.Next() {
		h, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, MapError(err, nil)
		}
		byDiary[h.DiaryID] = h
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, nil)
	}
	return byDiary, nil
}

// Close implements store.HistoryStore.Close
func (s *PostgresHistoryStore) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE histories SET closed_at = COALESCE(closed_at, $2)
		WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrHistoryNotFound)
}

func scanHistory(scan func(dest ...any) error) (*domain.History, error) {
	var (
		h        domain.History
		closedAt sql.NullTime
	)
	if err := scan(&h.ID, &h.DiaryID, &h.StartedAt, &h.EndedAt, &closedAt, &h.CreatedAt); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		h.ClosedAt = &t
	}
	return &h, nil
}
