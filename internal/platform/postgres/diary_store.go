package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgresDiaryStore implements the store.DiaryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDiaryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDiaryStore creates a new PostgreSQL implementation of the DiaryStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDiaryStore(db store.DBTX, logger *slog.Logger) *PostgresDiaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDiaryStore{
		db:     db,
		logger: logger.With(slog.String("component", "diary_store")),
	}
}

var _ store.DiaryStore = (*PostgresDiaryStore)(nil)

// WithTx implements store.DiaryStore.WithTx
func (s *PostgresDiaryStore) WithTx(tx *sql.Tx) store.DiaryStore {
	return &PostgresDiaryStore{db: tx, logger: s.logger}
}

const diaryColumns = `d.id, d.title, d.invitation_code, d.color_id, d.created_at, d.updated_at`

// Create implements store.DiaryStore.Create.
// The insert skips rows whose invitation code is taken, which is reported
// as store.ErrInvitationCodeExists without aborting the transaction.
func (s *PostgresDiaryStore) Create(ctx context.Context, diary *domain.Diary) error {
	if err := diary.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO diaries (id, title, invitation_code, color_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (invitation_code) DO NOTHING`,
		diary.ID, diary.Title, diary.InvitationCode, diary.ColorID, diary.CreatedAt, diary.UpdatedAt,
	)
	if err != nil {
		return MapError(err, nil)
	}
	if err := checkRowsAffected(result, store.ErrInvitationCodeExists); err != nil {
		s.logger.Debug("invitation code collision", slog.String("diary_id", diary.ID.String()))
		return err
	}

	s.logger.Debug("diary created", slog.String("diary_id", diary.ID.String()))
	return nil
}

// GetByID implements store.DiaryStore.GetByID
func (s *PostgresDiaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+diaryColumns+` FROM diaries d WHERE d.id = $1`, id)
	return scanDiary(row, store.ErrDiaryNotFound)
}

// GetByIDForUpdate implements store.DiaryStore.GetByIDForUpdate
func (s *PostgresDiaryStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries d WHERE d.id = $1 FOR UPDATE`, id)
	return scanDiary(row, store.ErrDiaryNotFound)
}

// GetByInvitationCodeForUpdate implements store.DiaryStore.GetByInvitationCodeForUpdate
func (s *PostgresDiaryStore) GetByInvitationCodeForUpdate(ctx context.Context, code string) (*domain.Diary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries d WHERE d.invitation_code = $1 FOR UPDATE`, code)
	return scanDiary(row, store.ErrInvitationCodeNotFound)
}

// ListByUser implements store.DiaryStore.ListByUser
func (s *PostgresDiaryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Diary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+diaryColumns+`
		FROM diaries d
		JOIN diary_groups g ON g.diary_id = d.id
		WHERE g.user_id = $1
		ORDER BY d.created_at DESC, d.id`,
		userID,
	)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	diaries := []domain.Diary{}
	for rows.Next() {
		var d domain.Diary
		if err := rows.Scan(&d.ID, &d.Title, &d.InvitationCode, &d.ColorID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, MapError(err, nil)
		}
		diaries = append(diaries, d)
	}
	return diaries, MapError(rows.Err(), nil)
}

func scanDiary(row *sql.Row, notFound error) (*domain.Diary, error) {
	var d domain.Diary
	if err := row.Scan(&d.ID, &d.Title, &d.InvitationCode, &d.ColorID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, MapError(err, notFound)
	}
	return &d, nil
}
