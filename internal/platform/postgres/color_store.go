package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgresColorStore implements store.ColorStore.
type PostgresColorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresColorStore creates a color store over db.
func NewPostgresColorStore(db store.DBTX, logger *slog.Logger) *PostgresColorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresColorStore{
		db:     db,
		logger: logger.With(slog.String("component", "color_store")),
	}
}

var _ store.ColorStore = (*PostgresColorStore)(nil)

// WithTx implements store.ColorStore.WithTx
func (s *PostgresColorStore) WithTx(tx *sql.Tx) store.ColorStore {
	return &PostgresColorStore{db: tx, logger: s.logger}
}

// GetByID implements store.ColorStore.GetByID
func (s *PostgresColorStore) GetByID(ctx context.Context, id int64) (*domain.Color, error) {
	var c domain.Color
	err := s.db.QueryRowContext(ctx, `SELECT id, code FROM colors WHERE id = $1`, id).
		Scan(&c.ID, &c.Code)
	if err != nil {
		return nil, MapError(err, store.ErrColorNotFound)
	}
	return &c, nil
}

// List implements store.ColorStore.List
func (s *PostgresColorStore) List(ctx context.Context) ([]domain.Color, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code FROM colors ORDER BY id`)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	colors := []domain.Color{}
	for rows.Next() {
		var c domain.Color
		if err := rows.Scan(&c.ID, &c.Code); err != nil {
			return nil, MapError(err, nil)
		}
		colors = append(colors, c)
	}
	return colors, MapError(rows.Err(), nil)
}
