//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/platform/postgres"
	"github.com/phrazzld/palette-api/internal/store"
	"github.com/phrazzld/palette-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, tx *sql.Tx, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, domain.SocialTypeKakao)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresUserStore(tx, nil).Create(context.Background(), user))
	return user
}

func createDiary(t *testing.T, tx *sql.Tx, founder uuid.UUID) *domain.Diary {
	t.Helper()
	ctx := context.Background()
	diary, err := domain.NewDiary("ours", 1)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresDiaryStore(tx, nil).Create(ctx, diary))
	require.NoError(t, postgres.NewPostgresDiaryGroupStore(tx, nil).
		Create(ctx, domain.NewDiaryGroup(diary.ID, founder, true)))
	return diary
}

func TestIntegration_ColorsSeeded(t *testing.T) {
	db := testdb.Open(t)
	colors, err := postgres.NewPostgresColorStore(db, nil).List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, colors)
	assert.Equal(t, int64(1), colors[0].ID)

	_, err = postgres.NewPostgresColorStore(db, nil).GetByID(context.Background(), 100000)
	assert.ErrorIs(t, err, store.ErrColorNotFound)
}

func TestIntegration_UserLifecycle(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		user := createUser(t, tx, "writer@example.com")

		got, err := users.GetByEmail(ctx, "writer@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, []domain.SocialType{domain.SocialTypeKakao}, got.SocialTypes)

		got.AgreeWithTerms = true
		got.SocialTypes = append(got.SocialTypes, domain.SocialTypeApple)
		require.NoError(t, users.Update(ctx, got))

		got, err = users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.AgreeWithTerms)
		assert.ElementsMatch(t, []domain.SocialType{domain.SocialTypeKakao, domain.SocialTypeApple}, got.SocialTypes)

		require.NoError(t, users.SoftDelete(ctx, user.ID))
		got, err = users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDeleted)
		assert.NotNil(t, got.DeletedAt)

		// Leaves the transaction aborted; must stay last.
		dup, err := domain.NewUser("writer@example.com", domain.SocialTypeGoogle)
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)
	})
}

func TestIntegration_DiaryMembership(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		diaries := postgres.NewPostgresDiaryStore(tx, nil)
		groups := postgres.NewPostgresDiaryGroupStore(tx, nil)

		founder := createUser(t, tx, "founder@example.com")
		partner := createUser(t, tx, "partner@example.com")
		diary := createDiary(t, tx, founder.ID)

		locked, err := diaries.GetByInvitationCodeForUpdate(ctx, diary.InvitationCode)
		require.NoError(t, err)
		assert.Equal(t, diary.ID, locked.ID)

		_, err = diaries.GetByInvitationCodeForUpdate(ctx, "zzzzzzzz")
		assert.ErrorIs(t, err, store.ErrInvitationCodeNotFound)

		require.NoError(t, groups.Create(ctx, domain.NewDiaryGroup(diary.ID, partner.ID, false)))

		rows, err := groups.ListByDiary(ctx, diary.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, domain.DiaryStatusReady, domain.DiaryStatusOf(rows, nil))

		listed, err := diaries.ListByUser(ctx, partner.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, diary.ID, listed[0].ID)

		require.NoError(t, groups.MarkOuted(ctx, diary.ID, partner.ID))
		assert.ErrorIs(t, groups.MarkOuted(ctx, diary.ID, uuid.New()), store.ErrDiaryGroupNotFound)

		byDiary, err := groups.ListByUserDiaries(ctx, founder.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DiaryStatusDiscard, domain.DiaryStatusOf(byDiary[diary.ID], nil))

		n, err := groups.MarkAllOutedByUser(ctx, founder.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		// Leaves the transaction aborted; must stay last.
		err = groups.Create(ctx, domain.NewDiaryGroup(diary.ID, partner.ID, false))
		assert.ErrorIs(t, err, store.ErrDiaryGroupExists)
	})
}

func TestIntegration_Histories(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		histories := postgres.NewPostgresHistoryStore(tx, nil)

		founder := createUser(t, tx, "history@example.com")
		diary := createDiary(t, tx, founder.ID)

		now := time.Now().UTC().Truncate(time.Microsecond)
		current, err := histories.GetInProgress(ctx, diary.ID, now)
		require.NoError(t, err)
		assert.Nil(t, current)

		h, err := domain.NewHistory(diary.ID, 7, now)
		require.NoError(t, err)
		require.NoError(t, histories.Create(ctx, h))

		current, err = histories.GetInProgress(ctx, diary.ID, now.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, h.ID, current.ID)

		current, err = histories.GetInProgress(ctx, diary.ID, now.AddDate(0, 0, 8))
		require.NoError(t, err)
		assert.Nil(t, current, "history past its end is not in progress")

		byDiary, err := histories.ListInProgressByUser(ctx, founder.ID, now)
		require.NoError(t, err)
		assert.Contains(t, byDiary, diary.ID)

		closedAt := now.Add(time.Minute)
		require.NoError(t, histories.Close(ctx, h.ID, closedAt))
		require.NoError(t, histories.Close(ctx, h.ID, closedAt.Add(time.Hour)))

		got, err := histories.GetByID(ctx, h.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ClosedAt)
		assert.True(t, got.ClosedAt.Equal(closedAt), "second close keeps the first timestamp")

		assert.ErrorIs(t, histories.Close(ctx, uuid.New(), now), store.ErrHistoryNotFound)
	})
}

func TestIntegration_RefreshTokens(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tokens := postgres.NewPostgresRefreshTokenStore(tx, nil)
		user := createUser(t, tx, "token@example.com")

		now := time.Now().UTC().Truncate(time.Microsecond)
		first := &store.RefreshToken{UserID: user.ID, TokenHash: "first", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
		require.NoError(t, tokens.Upsert(ctx, first))

		second := &store.RefreshToken{UserID: user.ID, TokenHash: "second", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
		require.NoError(t, tokens.Upsert(ctx, second))

		_, err := tokens.GetByHash(ctx, "first")
		assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound, "upsert replaces the previous digest")

		got, err := tokens.GetByHash(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.UserID)

		require.NoError(t, tokens.DeleteByUserID(ctx, user.ID))
		require.NoError(t, tokens.DeleteByHash(ctx, "second"))
		_, err = tokens.GetByHash(ctx, "second")
		assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound)
	})
}
