package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the stored digest of the single active refresh token of a user.
type RefreshToken struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshTokenStore persists refresh token digests. The raw token is never stored.
type RefreshTokenStore interface {
	// Upsert stores the digest for the user, replacing any previous one.
	Upsert(ctx context.Context, token *RefreshToken) error

	// GetByHash returns ErrRefreshTokenNotFound if no user holds the digest.
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// DeleteByHash removes the digest. A missing digest is not an error.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes the user's digest. A missing digest is not an error.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	WithTx(tx *sql.Tx) RefreshTokenStore
}
