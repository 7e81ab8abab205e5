package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/metrics"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/service/auth"
	"github.com/phrazzld/palette-api/internal/store"
)

// LoginResult is returned by a successful login.
// IsRegistered reports whether the user has agreed to the terms; clients
// show the terms screen until it is true.
type LoginResult struct {
	User         *domain.User
	Tokens       *auth.TokenPair
	IsRegistered bool
	SocialTypes  []domain.SocialType
}

// UserService provides account operations
type UserService interface {
	// Login signs a user in with a verified social email, creating the
	// account on first use. Deleted accounts fail with ErrDeletedUser.
	Login(ctx context.Context, email string, socialType domain.SocialType) (*LoginResult, error)

	// DeleteAccount soft-deletes the user, leaves all of their diaries and
	// revokes the refresh token stored for them.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error

	// Logout revokes the refresh token. Unknown tokens are ignored.
	Logout(ctx context.Context, refreshToken string) error

	// RefreshAccessToken exchanges a refresh token for a new access token.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)

	// AgreeToTerms records the user's agreement to the terms of service.
	AgreeToTerms(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUser retrieves an active user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	tx            store.Transactor
	userStore     store.UserStore
	groupStore    store.DiaryGroupStore
	refreshTokens store.RefreshTokenStore
	tokens        auth.TokenService
	metrics       metrics.Recorder
	logger        *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	tx store.Transactor,
	userStore store.UserStore,
	groupStore store.DiaryGroupStore,
	refreshTokens store.RefreshTokenStore,
	tokens auth.TokenService,
	recorder metrics.Recorder,
	log *slog.Logger,
) (*UserServiceImpl, error) {
	switch {
	case tx == nil:
		return nil, errors.New("transactor cannot be nil")
	case userStore == nil:
		return nil, errors.New("user store cannot be nil")
	case groupStore == nil:
		return nil, errors.New("diary group store cannot be nil")
	case refreshTokens == nil:
		return nil, errors.New("refresh token store cannot be nil")
	case tokens == nil:
		return nil, errors.New("token service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	return &UserServiceImpl{
		tx:            tx,
		userStore:     userStore,
		groupStore:    groupStore,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		metrics:       recorder,
		logger:        log.With("component", "user_service"),
	}, nil
}

// Login finds or creates the user for email and issues a token pair.
// Concurrent first logins for the same email race on the unique email
// constraint; the loser retries once and picks up the winner's row.
func (s *UserServiceImpl) Login(
	ctx context.Context,
	email string,
	socialType domain.SocialType,
) (*LoginResult, error) {
	user, created, err := s.findOrCreate(ctx, email, socialType)
	if errors.Is(err, store.ErrEmailExists) {
		user, created, err = s.findOrCreate(ctx, email, socialType)
	}
	if err != nil {
		if errors.Is(err, ErrDeletedUser) {
			s.metrics.RecordLogin(metrics.LoginDeletedUser)
		} else {
			s.metrics.RecordLogin(metrics.LoginFailed)
		}
		return nil, s.fail(ctx, "login", err)
	}

	tokens, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		s.metrics.RecordLogin(metrics.LoginFailed)
		return nil, s.fail(ctx, "login", err)
	}

	outcome := metrics.LoginExistingUser
	if created {
		outcome = metrics.LoginNewUser
	}
	s.metrics.RecordLogin(outcome)
	logger.FromContextOrDefault(ctx, s.logger).Info("user logged in",
		"user_id", user.ID,
		"social_type", socialType,
		"new_user", created)

	return &LoginResult{
		User:         user,
		Tokens:       tokens,
		IsRegistered: user.AgreeWithTerms,
		SocialTypes:  user.SocialTypes,
	}, nil
}

func (s *UserServiceImpl) findOrCreate(
	ctx context.Context,
	email string,
	socialType domain.SocialType,
) (*domain.User, bool, error) {
	var (
		user    *domain.User
		created bool
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		existing, err := users.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			newUser, err := domain.NewUser(email, socialType)
			if err != nil {
				return err
			}
			if err := users.Create(ctx, newUser); err != nil {
				return err
			}
			user, created = newUser, true
			return nil
		case err != nil:
			return err
		case existing.IsDeleted:
			return ErrDeletedUser
		}

		if !existing.HasSocialType(socialType) {
			existing.SocialTypes = append(existing.SocialTypes, socialType)
			if err := users.Update(ctx, existing); err != nil {
				return err
			}
		}
		user = existing
		return nil
	})

	return user, created, err
}

// DeleteAccount soft-deletes the user in one transaction: every active
// membership is outed, the user row is flagged and the refresh digest removed.
// Only the digest owned by userID is touched; the request cookie is never
// trusted to name the row.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	var left int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)
		if _, err := activeUser(ctx, users, userID); err != nil {
			return err
		}

		var err error
		left, err = s.groupStore.WithTx(tx).MarkAllOutedByUser(ctx, userID)
		if err != nil {
			return err
		}

		if err := users.SoftDelete(ctx, userID); err != nil {
			return err
		}

		return s.refreshTokens.WithTx(tx).DeleteByUserID(ctx, userID)
	})
	if err != nil {
		return s.fail(ctx, "delete_account", err)
	}

	s.metrics.RecordDiaryEvent(metrics.EventAccountDeleted)
	logger.FromContextOrDefault(ctx, s.logger).Info("account deleted",
		"user_id", userID,
		"diaries_left", left)
	return nil
}

// Logout revokes the refresh token.
func (s *UserServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return s.fail(ctx, "logout", err)
	}
	return nil
}

// RefreshAccessToken validates the refresh token and issues a new access
// token for its user. Tokens of deleted users are rejected with
// store.ErrUserNotFound.
func (s *UserServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	accessToken, claims, err := s.tokens.Renew(ctx, refreshToken)
	if err != nil {
		return "", s.fail(ctx, "refresh_access_token", err)
	}

	if _, err := activeUser(ctx, s.userStore, claims.UserID); err != nil {
		return "", s.fail(ctx, "refresh_access_token", err)
	}

	return accessToken, nil
}

// AgreeToTerms sets AgreeWithTerms on the user. Agreeing twice is a no-op.
func (s *UserServiceImpl) AgreeToTerms(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.IsDeleted {
			return ErrDeletedUser
		}

		user = u
		if u.AgreeWithTerms {
			return nil
		}
		u.AgreeWithTerms = true
		return users.Update(ctx, u)
	})
	if err != nil {
		return nil, s.fail(ctx, "agree_to_terms", err)
	}

	return user, nil
}

// GetUser retrieves an active user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := activeUser(ctx, s.userStore, userID)
	if err != nil {
		return nil, s.fail(ctx, "get_user", err)
	}
	return user, nil
}

func (s *UserServiceImpl) fail(ctx context.Context, op string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if isExpected(err) {
		log.Debug("user operation rejected", "op", op, "error", err)
	} else {
		log.Error("user operation failed", "op", op, "error", err)
	}
	return NewServiceError("user", op, err)
}

// activeUser loads a user and treats soft-deleted accounts as missing.
func activeUser(ctx context.Context, users store.UserStore, id uuid.UUID) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}
