package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgresDiaryGroupStore implements store.DiaryGroupStore.
type PostgresDiaryGroupStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDiaryGroupStore creates a membership store over db.
func NewPostgresDiaryGroupStore(db store.DBTX, logger *slog.Logger) *PostgresDiaryGroupStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDiaryGroupStore{
		db:     db,
		logger: logger.With(slog.String("component", "diary_group_store")),
	}
}

var _ store.DiaryGroupStore = (*PostgresDiaryGroupStore)(nil)

// WithTx implements store.DiaryGroupStore.WithTx
func (s *PostgresDiaryGroupStore) WithTx(tx *sql.Tx) store.DiaryGroupStore {
	return &PostgresDiaryGroupStore{db: tx, logger: s.logger}
}

const groupColumns = `g.id, g.diary_id, g.user_id, g.is_admin, g.is_outed, g.created_at, g.updated_at`

// Create implements store.DiaryGroupStore.Create
func (s *PostgresDiaryGroupStore) Create(ctx context.Context, group *domain.DiaryGroup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diary_groups (id, diary_id, user_id, is_admin, is_outed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		group.ID, group.DiaryID, group.UserID, group.IsAdmin, group.IsOuted, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return MapError(err, nil)
	}

	s.logger.Debug("diary group created",
		slog.String("diary_id", group.DiaryID.String()),
		slog.String("user_id", group.UserID.String()),
		slog.Bool("is_admin", group.IsAdmin))
	return nil
}

// ListByDiary implements store.DiaryGroupStore.ListByDiary
func (s *PostgresDiaryGroupStore) ListByDiary(ctx context.Context, diaryID uuid.UUID) ([]domain.DiaryGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+groupColumns+` FROM diary_groups g
		WHERE g.diary_id = $1
		ORDER BY g.created_at, g.id`,
		diaryID,
	)
	if err != nil {
		return nil, MapError(err, nil)
	}
	groups, err := s.collect(rows)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListByUserDiaries implements store.DiaryGroupStore.ListByUserDiaries
func (s *PostgresDiaryGroupStore) ListByUserDiaries(
	ctx context.Context,
	userID uuid.UUID,
) (map[uuid.UUID][]domain.DiaryGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+groupColumns+` FROM diary_groups g
		WHERE g.diary_id IN (SELECT diary_id FROM diary_groups WHERE user_id = $1)
		ORDER BY g.diary_id, g.created_at, g.id`,
		userID,
	)
	if err != nil {
		return nil, MapError(err, nil)
	}
	groups, err := s.collect(rows)
	if err != nil {
		return nil, err
	}

	byDiary := make(map[uuid.UUID][]domain.DiaryGroup)
	for _, g := range groups {
		byDiary[g.DiaryID] = append(byDiary[g.DiaryID], g)
	}
	return byDiary, nil
}

// MarkOuted implements store.DiaryGroupStore.MarkOuted
func (s *PostgresDiaryGroupStore) MarkOuted(ctx context.Context, diaryID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE diary_groups SET is_outed = TRUE, updated_at = $3
		WHERE diary_id = $1 AND user_id = $2`,
		diaryID, userID, time.Now().UTC(),
	)
	if err != nil {
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrDiaryGroupNotFound)
}

// MarkAllOutedByUser implements store.DiaryGroupStore.MarkAllOutedByUser
func (s *PostgresDiaryGroupStore) MarkAllOutedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE diary_groups SET is_outed = TRUE, updated_at = $2
		WHERE user_id = $1 AND is_outed = FALSE`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return 0, MapError(err, nil)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PostgresDiaryGroupStore) collect(rows *sql.Rows) ([]domain.DiaryGroup, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	groups := []domain.DiaryGroup{}
	for rows.Next() {
		var g domain.DiaryGroup
		if err := rows.Scan(&g.ID, &g.DiaryID, &g.UserID, &g.IsAdmin, &g.IsOuted, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, MapError(err, nil)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, nil)
	}
	return groups, nil
}
