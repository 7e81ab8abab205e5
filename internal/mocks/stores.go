package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// WithTx on every store mock returns the mock itself unless the test set an
// explicit expectation, so transactional code paths keep hitting the same
// expectations.

// UserStore is a testify mock of store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// ColorStore is a testify mock of store.ColorStore.
type ColorStore struct {
	mock.Mock
}

var _ store.ColorStore = (*ColorStore)(nil)

func (m *ColorStore) GetByID(ctx context.Context, id int64) (*domain.Color, error) {
	args := m.Called(ctx, id)
	if color, ok := args.Get(0).(*domain.Color); ok {
		return color, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ColorStore) List(ctx context.Context) ([]domain.Color, error) {
	args := m.Called(ctx)
	if colors, ok := args.Get(0).([]domain.Color); ok {
		return colors, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ColorStore) WithTx(tx *sql.Tx) store.ColorStore {
	return m
}

// DiaryStore is a testify mock of store.DiaryStore.
type DiaryStore struct {
	mock.Mock
}

var _ store.DiaryStore = (*DiaryStore)(nil)

func (m *DiaryStore) Create(ctx context.Context, diary *domain.Diary) error {
	args := m.Called(ctx, diary)
	return args.Error(0)
}

func (m *DiaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	args := m.Called(ctx, id)
	return diaryResult(args)
}

func (m *DiaryStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	args := m.Called(ctx, id)
	return diaryResult(args)
}

func (m *DiaryStore) GetByInvitationCodeForUpdate(ctx context.Context, code string) (*domain.Diary, error) {
	args := m.Called(ctx, code)
	return diaryResult(args)
}

func (m *DiaryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Diary, error) {
	args := m.Called(ctx, userID)
	if diaries, ok := args.Get(0).([]domain.Diary); ok {
		return diaries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DiaryStore) WithTx(tx *sql.Tx) store.DiaryStore {
	return m
}

func diaryResult(args mock.Arguments) (*domain.Diary, error) {
	if diary, ok := args.Get(0).(*domain.Diary); ok {
		return diary, args.Error(1)
	}
	return nil, args.Error(1)
}

// DiaryGroupStore is a testify mock of store.DiaryGroupStore.
type DiaryGroupStore struct {
	mock.Mock
}

var _ store.DiaryGroupStore = (*DiaryGroupStore)(nil)

func (m *DiaryGroupStore) Create(ctx context.Context, group *domain.DiaryGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *DiaryGroupStore) ListByDiary(ctx context.Context, diaryID uuid.UUID) ([]domain.DiaryGroup, error) {
	args := m.Called(ctx, diaryID)
	if groups, ok := args.Get(0).([]domain.DiaryGroup); ok {
		return groups, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DiaryGroupStore) ListByUserDiaries(
	ctx context.Context,
	userID uuid.UUID,
) (map[uuid.UUID][]domain.DiaryGroup, error) {
	args := m.Called(ctx, userID)
	if groups, ok := args.Get(0).(map[uuid.UUID][]domain.DiaryGroup); ok {
		return groups, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DiaryGroupStore) MarkOuted(ctx context.Context, diaryID, userID uuid.UUID) error {
	args := m.Called(ctx, diaryID, userID)
	return args.Error(0)
}

func (m *DiaryGroupStore) MarkAllOutedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DiaryGroupStore) WithTx(tx *sql.Tx) store.DiaryGroupStore {
	return m
}

// HistoryStore is a testify mock of store.HistoryStore.
type HistoryStore struct {
	mock.Mock
}

var _ store.HistoryStore = (*HistoryStore)(nil)

func (m *HistoryStore) Create(ctx context.Context, history *domain.History) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *HistoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.History, error) {
	args := m.Called(ctx, id)
	return historyResult(args)
}

func (m *HistoryStore) GetInProgress(ctx context.Context, diaryID uuid.UUID, now time.Time) (*domain.History, error) {
	args := m.Called(ctx, diaryID, now)
	return historyResult(args)
}

func (m *HistoryStore) ListInProgressByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (map[uuid.UUID]*domain.History, error) {
	args := m.Called(ctx, userID, now)
	if histories, ok := args.Get(0).(map[uuid.UUID]*domain.History); ok {
		return histories, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HistoryStore) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *HistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return m
}

func historyResult(args mock.Arguments) (*domain.History, error) {
	if history, ok := args.Get(0).(*domain.History); ok {
		return history, args.Error(1)
	}
	return nil, args.Error(1)
}

// RefreshTokenStore is a testify mock of store.RefreshTokenStore.
type RefreshTokenStore struct {
	mock.Mock
}

var _ store.RefreshTokenStore = (*RefreshTokenStore)(nil)

func (m *RefreshTokenStore) Upsert(ctx context.Context, token *store.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStore) GetByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if token, ok := args.Get(0).(*store.RefreshToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RefreshTokenStore) DeleteByHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *RefreshTokenStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenStore) WithTx(tx *sql.Tx) store.RefreshTokenStore {
	return m
}
