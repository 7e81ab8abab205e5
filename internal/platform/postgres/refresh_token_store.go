package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgresRefreshTokenStore implements store.RefreshTokenStore.
type PostgresRefreshTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRefreshTokenStore creates a refresh token store over db.
func NewPostgresRefreshTokenStore(db store.DBTX, logger *slog.Logger) *PostgresRefreshTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRefreshTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "refresh_token_store")),
	}
}

var _ store.RefreshTokenStore = (*PostgresRefreshTokenStore)(nil)

// WithTx implements store.RefreshTokenStore.WithTx
func (s *PostgresRefreshTokenStore) WithTx(tx *sql.Tx) store.RefreshTokenStore {
	return &PostgresRefreshTokenStore{db: tx, logger: s.logger}
}

// Upsert implements store.RefreshTokenStore.Upsert
func (s *PostgresRefreshTokenStore) Upsert(ctx context.Context, token *store.RefreshToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at`,
		token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	return MapError(err, nil)
}

// GetByHash implements store.RefreshTokenStore.GetByHash
func (s *PostgresRefreshTokenStore) GetByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	var t store.RefreshToken
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, token_hash, expires_at, created_at
		FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, MapError(err, store.ErrRefreshTokenNotFound)
	}
	return &t, nil
}

// DeleteByHash implements store.RefreshTokenStore.DeleteByHash
func (s *PostgresRefreshTokenStore) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return MapError(err, nil)
}

// DeleteByUserID implements store.RefreshTokenStore.DeleteByUserID
func (s *PostgresRefreshTokenStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return MapError(err, nil)
}
