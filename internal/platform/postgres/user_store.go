package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

const userColumns = `
	u.id, u.email, u.agree_with_terms, u.is_deleted, u.deleted_at, u.created_at, u.updated_at,
	COALESCE((SELECT string_agg(st.social_type, ',' ORDER BY st.social_type)
	          FROM user_social_types st WHERE st.user_id = u.id), '')`

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, agree_with_terms, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)`,
		user.ID, user.Email, user.AgreeWithTerms, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		s.logger.Debug("user insert failed", slog.String("user_id", user.ID.String()))
		return MapError(err, nil)
	}

	if err := s.addSocialTypes(ctx, user.ID, user.SocialTypes); err != nil {
		return err
	}

	s.logger.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

func (s *PostgresUserStore) addSocialTypes(ctx context.Context, userID uuid.UUID, types []domain.SocialType) error {
	for _, st := range types {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO user_social_types (user_id, social_type)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			userID, string(st),
		)
		if err != nil {
			return MapError(err, nil)
		}
	}
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	return scanUser(row)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`,
		strings.TrimSpace(email),
	)
	return scanUser(row)
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET agree_with_terms = $2, updated_at = $3
		WHERE id = $1`,
		user.ID, user.AgreeWithTerms, user.UpdatedAt,
	)
	if err != nil {
		return MapError(err, nil)
	}
	if err := checkRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	return s.addSocialTypes(ctx, user.ID, user.SocialTypes)
}

// SoftDelete implements store.UserStore.SoftDelete
func (s *PostgresUserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1`,
		id, now,
	)
	if err != nil {
		return MapError(err, nil)
	}
	if err := checkRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	s.logger.Info("user soft deleted", slog.String("user_id", id.String()))
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u           domain.User
		deletedAt   sql.NullTime
		socialTypes string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.AgreeWithTerms, &u.IsDeleted, &deletedAt,
		&u.CreatedAt, &u.UpdatedAt, &socialTypes,
	)
	if err != nil {
		return nil, MapError(err, store.ErrUserNotFound)
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	u.SocialTypes = parseSocialTypes(socialTypes)
	return &u, nil
}

func parseSocialTypes(joined string) []domain.SocialType {
	types := []domain.SocialType{}
	for _, part := range strings.Split(joined, ",") {
		if st, err := domain.ParseSocialType(part); err == nil {
			types = append(types, st)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
