package service

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/palette-api/internal/config"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/metrics"
	"github.com/phrazzld/palette-api/internal/mocks"
	"github.com/phrazzld/palette-api/internal/service/auth"
	"github.com/phrazzld/palette-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	db       *memDB
	diaries  *diaryService
	users    *UserServiceImpl
	notifier *mocks.RecordingNotifier
	now      time.Time
}

func newScenario(t *testing.T) *scenario {
	t.Helper()

	db := newMemDB()
	tx := &mocks.MockTransactor{}
	notifier := &mocks.RecordingNotifier{}

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "scenario-secret-that-is-at-least-32-bytes",
		TokenLifetimeMinutes:        30,
		RefreshTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(jwtService, memTokens{db}, discardLogger())
	require.NoError(t, err)

	stores := db.stores()
	diarySvc, err := NewDiaryService(tx, stores, notifier, metrics.NopRecorder{}, discardLogger())
	require.NoError(t, err)
	userSvc, err := NewUserService(tx, stores.Users, stores.Groups, memTokens{db}, tokens, nil, discardLogger())
	require.NoError(t, err)

	s := &scenario{
		db:       db,
		diaries:  diarySvc.(*diaryService),
		users:    userSvc,
		notifier: notifier,
		now:      time.Now().UTC(),
	}
	s.diaries.timeFunc = func() time.Time { return s.now }
	return s
}

func TestScenario_DiaryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	a, err := s.users.Login(ctx, "a@example.com", domain.SocialTypeKakao)
	require.NoError(t, err)
	b, err := s.users.Login(ctx, "b@example.com", domain.SocialTypeApple)
	require.NoError(t, err)

	diary, err := s.diaries.CreateDiary(ctx, 1, "us", a.User.ID)
	require.NoError(t, err)

	status, err := s.diaries.DiaryStatus(ctx, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStatusWait, status)

	joined, err := s.diaries.Invite(ctx, diary.InvitationCode, b.User.ID)
	require.NoError(t, err)
	require.NotNil(t, joined.Admin)
	assert.Equal(t, a.User.ID, joined.Admin.ID)
	assert.Len(t, s.notifier.Published(), 1)

	status, err = s.diaries.DiaryStatus(ctx, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStatusReady, status)

	historyID, err := s.diaries.CreateHistory(ctx, diary.ID, a.User.ID, 7)
	require.NoError(t, err)

	status, err = s.diaries.DiaryStatus(ctx, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStatusStart, status)

	current, err := s.diaries.CurrentHistory(ctx, diary.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, historyID, current.ID)

	_, err = s.diaries.CreateHistory(ctx, diary.ID, b.User.ID, 7)
	assert.ErrorIs(t, err, domain.ErrHistoryInProgress)

	require.NoError(t, s.diaries.LeaveDiary(ctx, diary.ID, b.User.ID))

	status, err = s.diaries.DiaryStatus(ctx, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStatusDiscard, status)

	_, err = s.diaries.Invite(ctx, diary.InvitationCode, b.User.ID)
	assert.ErrorIs(t, err, domain.ErrMemberOuted)

	require.NoError(t, s.diaries.CloseHistory(ctx, historyID, a.User.ID))
	_, err = s.diaries.CreateHistory(ctx, diary.ID, b.User.ID, 7)
	assert.ErrorIs(t, err, domain.ErrMemberOuted, "a member who left cannot start a history")
	require.NoError(t, s.diaries.Authorize(ctx, diary.ID, b.User.ID), "but can still read the diary")

	views, err := s.diaries.ListDiaries(ctx, a.User.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.DiaryStatusDiscard, views[0].Status)
}

func TestScenario_HistoryCanRestartAfterClose(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	a, err := s.users.Login(ctx, "a@example.com", domain.SocialTypeKakao)
	require.NoError(t, err)
	b, err := s.users.Login(ctx, "b@example.com", domain.SocialTypeKakao)
	require.NoError(t, err)

	diary, err := s.diaries.CreateDiary(ctx, 1, "", a.User.ID)
	require.NoError(t, err)
	_, err = s.diaries.Invite(ctx, diary.InvitationCode, b.User.ID)
	require.NoError(t, err)

	first, err := s.diaries.CreateHistory(ctx, diary.ID, a.User.ID, 1)
	require.NoError(t, err)
	_, err = s.diaries.CreateHistory(ctx, diary.ID, b.User.ID, 1)
	require.ErrorIs(t, err, domain.ErrHistoryInProgress)

	require.NoError(t, s.diaries.CloseHistory(ctx, first, a.User.ID))

	second, err := s.diaries.CreateHistory(ctx, diary.ID, b.User.ID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// A history that ran out is no longer in progress either.
	s.now = s.now.AddDate(0, 0, 2)
	status, err := s.diaries.DiaryStatus(ctx, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStatusReady, status)
}

func TestScenario_ThirdUserCannotJoin(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	var ids []*LoginResult
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		r, err := s.users.Login(ctx, email, domain.SocialTypeGoogle)
		require.NoError(t, err)
		ids = append(ids, r)
	}

	diary, err := s.diaries.CreateDiary(ctx, 1, "", ids[0].User.ID)
	require.NoError(t, err)
	_, err = s.diaries.Invite(ctx, diary.InvitationCode, ids[1].User.ID)
	require.NoError(t, err)

	_, err = s.diaries.Invite(ctx, diary.InvitationCode, ids[2].User.ID)
	assert.ErrorIs(t, err, domain.ErrDiaryFull)
}

func TestScenario_AccountDeletion(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	a, err := s.users.Login(ctx, "a@example.com", domain.SocialTypeKakao)
	require.NoError(t, err)
	b, err := s.users.Login(ctx, "b@example.com", domain.SocialTypeKakao)
	require.NoError(t, err)

	diary, err := s.diaries.CreateDiary(ctx, 1, "", a.User.ID)
	require.NoError(t, err)
	_, err = s.diaries.Invite(ctx, diary.InvitationCode, b.User.ID)
	require.NoError(t, err)

	require.NoError(t, s.users.DeleteAccount(ctx, b.User.ID))

	status, err := s.diaries.DiaryStatus(ctx, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiaryStatusDiscard, status)

	_, err = s.users.RefreshAccessToken(ctx, b.Tokens.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	again, err := s.users.Login(ctx, "b@example.com", domain.SocialTypeKakao)
	assert.ErrorIs(t, err, ErrDeletedUser)
	assert.Nil(t, again)
	_, stillHasToken := s.db.tokens[b.User.ID]
	assert.False(t, stillHasToken)

	// The other member keeps working.
	access, err := s.users.RefreshAccessToken(ctx, a.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = s.users.GetUser(ctx, b.User.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
