package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/store"
	"golang.org/x/crypto/blake2b"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenService manages the lifecycle of access and refresh tokens.
// A user holds at most one valid refresh token; issuing a new pair replaces
// the previous one. Refresh tokens are not rotated on use and expire at a
// fixed time.
type TokenService interface {
	// Issue creates an access/refresh pair and stores the refresh digest,
	// replacing any previous refresh token of the user.
	Issue(ctx context.Context, userID uuid.UUID, email string) (*TokenPair, error)

	// Renew exchanges a refresh token for a new access token. The refresh
	// token must be well formed, unexpired and still the stored one.
	Renew(ctx context.Context, refreshToken string) (string, *Claims, error)

	// Revoke forgets a refresh token. Unknown or empty tokens are ignored.
	Revoke(ctx context.Context, refreshToken string) error

	// ValidateAccess validates an access token.
	ValidateAccess(ctx context.Context, accessToken string) (*Claims, error)
}

type tokenService struct {
	jwt      JWTService
	tokens   store.RefreshTokenStore
	logger   *slog.Logger
	timeFunc func() time.Time
}

var _ TokenService = (*tokenService)(nil)

// NewTokenService creates a TokenService signing with jwtService and
// persisting refresh digests in tokens.
func NewTokenService(jwtService JWTService, tokens store.RefreshTokenStore, log *slog.Logger) (TokenService, error) {
	if jwtService == nil {
		return nil, errors.New("jwtService cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &tokenService{
		jwt:      jwtService,
		tokens:   tokens,
		logger:   log.With(slog.String("component", "token_service")),
		timeFunc: time.Now,
	}, nil
}

// HashToken returns the hex BLAKE2b-256 digest under which a refresh token is stored.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *tokenService) Issue(ctx context.Context, userID uuid.UUID, email string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	access, err := s.jwt.GenerateToken(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.timeFunc().UTC()
	expiresAt := now.Add(s.jwt.RefreshTokenLifetime())
	err = s.tokens.Upsert(ctx, &store.RefreshToken{
		UserID:    userID,
		TokenHash: HashToken(refresh),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		log.Error("failed to store refresh token",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	log.Debug("issued token pair", slog.String("user_id", userID.String()))
	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: expiresAt}, nil
}

func (s *tokenService) Renew(ctx context.Context, refreshToken string) (string, *Claims, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(refreshToken) == "" {
		return "", nil, ErrMissingToken
	}

	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", nil, err
	}

	stored, err := s.tokens.GetByHash(ctx, HashToken(refreshToken))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("refresh token revoked or replaced", slog.String("user_id", claims.UserID.String()))
			return "", nil, ErrInvalidRefreshToken
		}
		return "", nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored.UserID != claims.UserID {
		log.Warn("refresh token bound to another user", slog.String("user_id", claims.UserID.String()))
		return "", nil, ErrInvalidRefreshToken
	}
	if !s.timeFunc().Before(stored.ExpiresAt) {
		return "", nil, ErrExpiredRefreshToken
	}

	access, err := s.jwt.GenerateToken(ctx, claims.UserID, claims.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return access, claims, nil
}

func (s *tokenService) Revoke(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	if err := s.tokens.DeleteByHash(ctx, HashToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *tokenService) ValidateAccess(ctx context.Context, accessToken string) (*Claims, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingToken
	}
	return s.jwt.ValidateToken(ctx, accessToken)
}
