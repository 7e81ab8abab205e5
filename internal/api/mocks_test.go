package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/service"
	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Login(ctx context.Context, email string, socialType domain.SocialType) (*service.LoginResult, error) {
	args := m.Called(ctx, email, socialType)
	res, _ := args.Get(0).(*service.LoginResult)
	return res, args.Error(1)
}

func (m *mockUserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockUserService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockUserService) AgreeToTerms(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockDiaryService struct {
	mock.Mock
}

var _ service.DiaryService = (*mockDiaryService)(nil)

func (m *mockDiaryService) CreateDiary(ctx context.Context, colorID int64, title string, founderID uuid.UUID) (*domain.Diary, error) {
	args := m.Called(ctx, colorID, title, founderID)
	d, _ := args.Get(0).(*domain.Diary)
	return d, args.Error(1)
}

func (m *mockDiaryService) Invite(ctx context.Context, code string, inviteeID uuid.UUID) (*service.InviteResult, error) {
	args := m.Called(ctx, code, inviteeID)
	res, _ := args.Get(0).(*service.InviteResult)
	return res, args.Error(1)
}

func (m *mockDiaryService) CreateHistory(
	ctx context.Context,
	diaryID, userID uuid.UUID,
	periodDays int,
) (uuid.UUID, error) {
	args := m.Called(ctx, diaryID, userID, periodDays)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *mockDiaryService) ListDiaries(ctx context.Context, userID uuid.UUID) ([]service.DiaryView, error) {
	args := m.Called(ctx, userID)
	views, _ := args.Get(0).([]service.DiaryView)
	return views, args.Error(1)
}

func (m *mockDiaryService) DiaryStatus(ctx context.Context, diaryID uuid.UUID) (domain.DiaryStatus, error) {
	args := m.Called(ctx, diaryID)
	status, _ := args.Get(0).(domain.DiaryStatus)
	return status, args.Error(1)
}

func (m *mockDiaryService) CurrentHistory(ctx context.Context, diaryID uuid.UUID) (*domain.History, error) {
	args := m.Called(ctx, diaryID)
	h, _ := args.Get(0).(*domain.History)
	return h, args.Error(1)
}

func (m *mockDiaryService) LeaveDiary(ctx context.Context, diaryID, userID uuid.UUID) error {
	return m.Called(ctx, diaryID, userID).Error(0)
}

func (m *mockDiaryService) CloseHistory(ctx context.Context, historyID, userID uuid.UUID) error {
	return m.Called(ctx, historyID, userID).Error(0)
}

func (m *mockDiaryService) Authorize(ctx context.Context, diaryID, userID uuid.UUID) error {
	return m.Called(ctx, diaryID, userID).Error(0)
}

func (m *mockDiaryService) ListColors(ctx context.Context) ([]domain.Color, error) {
	args := m.Called(ctx)
	colors, _ := args.Get(0).([]domain.Color)
	return colors, args.Error(1)
}
