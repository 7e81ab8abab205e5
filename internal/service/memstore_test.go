package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/store"
)

// memDB is an in-memory backing for the store interfaces, used by the
// end-to-end service scenarios. WithTx returns the same store; the
// transactor mock runs everything sequentially.
type memDB struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	colors    map[int64]domain.Color
	diaries   map[uuid.UUID]*domain.Diary
	groups    []*domain.DiaryGroup
	histories map[uuid.UUID]*domain.History
	tokens    map[uuid.UUID]*store.RefreshToken
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[uuid.UUID]*domain.User{},
		colors:    map[int64]domain.Color{1: {ID: 1, Code: "#FFB6C1"}},
		diaries:   map[uuid.UUID]*domain.Diary{},
		histories: map[uuid.UUID]*domain.History{},
		tokens:    map[uuid.UUID]*store.RefreshToken{},
	}
}

func (db *memDB) stores() DiaryStores {
	return DiaryStores{
		Users:     memUsers{db},
		Colors:    memColors{db},
		Diaries:   memDiaries{db},
		Groups:    memGroups{db},
		Histories: memHistories{db},
	}
}

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, u *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return store.ErrEmailExists
		}
	}
	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s memUsers) Update(_ context.Context, u *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[u.ID]; !ok {
		return store.ErrUserNotFound
	}
	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

func (s memUsers) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	now := time.Now().UTC()
	u.IsDeleted, u.DeletedAt = true, &now
	return nil
}

func (s memUsers) WithTx(*sql.Tx) store.UserStore { return s }

type memColors struct{ db *memDB }

func (s memColors) GetByID(_ context.Context, id int64) (*domain.Color, error) {
	c, ok := s.db.colors[id]
	if !ok {
		return nil, store.ErrColorNotFound
	}
	return &c, nil
}

func (s memColors) List(context.Context) ([]domain.Color, error) {
	out := make([]domain.Color, 0, len(s.db.colors))
	for _, c := range s.db.colors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memColors) WithTx(*sql.Tx) store.ColorStore { return s }

type memDiaries struct{ db *memDB }

func (s memDiaries) Create(_ context.Context, d *domain.Diary) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.diaries {
		if existing.InvitationCode == d.InvitationCode {
			return store.ErrInvitationCodeExists
		}
	}
	cp := *d
	s.db.diaries[d.ID] = &cp
	return nil
}

func (s memDiaries) GetByID(_ context.Context, id uuid.UUID) (*domain.Diary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.diaries[id]
	if !ok {
		return nil, store.ErrDiaryNotFound
	}
	cp := *d
	return &cp, nil
}

func (s memDiaries) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	return s.GetByID(ctx, id)
}

func (s memDiaries) GetByInvitationCodeForUpdate(_ context.Context, code string) (*domain.Diary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, d := range s.db.diaries {
		if d.InvitationCode == code {
			cp := *d
			return &cp, nil
		}
	}
	return nil, store.ErrInvitationCodeNotFound
}

func (s memDiaries) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Diary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []domain.Diary
	for _, g := range s.db.groups {
		if g.UserID == userID {
			out = append(out, *s.db.diaries[g.DiaryID])
		}
	}
	return out, nil
}

func (s memDiaries) WithTx(*sql.Tx) store.DiaryStore { return s }

type memGroups struct{ db *memDB }

func (s memGroups) Create(_ context.Context, g *domain.DiaryGroup) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.groups {
		if existing.DiaryID == g.DiaryID && existing.UserID == g.UserID {
			return store.ErrDiaryGroupExists
		}
	}
	cp := *g
	s.db.groups = append(s.db.groups, &cp)
	return nil
}

func (s memGroups) ListByDiary(_ context.Context, diaryID uuid.UUID) ([]domain.DiaryGroup, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []domain.DiaryGroup{}
	for _, g := range s.db.groups {
		if g.DiaryID == diaryID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s memGroups) ListByUserDiaries(ctx context.Context, userID uuid.UUID) (map[uuid.UUID][]domain.DiaryGroup, error) {
	diaries, _ := memDiaries(s).ListByUser(ctx, userID)
	out := map[uuid.UUID][]domain.DiaryGroup{}
	for _, d := range diaries {
		out[d.ID], _ = s.ListByDiary(ctx, d.ID)
	}
	return out, nil
}

func (s memGroups) MarkOuted(_ context.Context, diaryID, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, g := range s.db.groups {
		if g.DiaryID == diaryID && g.UserID == userID {
			g.IsOuted = true
			return nil
		}
	}
	return store.ErrDiaryGroupNotFound
}

func (s memGroups) MarkAllOutedByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, g := range s.db.groups {
		if g.UserID == userID && !g.IsOuted {
			g.IsOuted = true
			n++
		}
	}
	return n, nil
}

func (s memGroups) WithTx(*sql.Tx) store.DiaryGroupStore { return s }

type memHistories struct{ db *memDB }

func (s memHistories) Create(_ context.Context, h *domain.History) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cp := *h
	s.db.histories[h.ID] = &cp
	return nil
}

func (s memHistories) GetByID(_ context.Context, id uuid.UUID) (*domain.History, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h, ok := s.db.histories[id]
	if !ok {
		return nil, store.ErrHistoryNotFound
	}
	cp := *h
	return &cp, nil
}

func (s memHistories) GetInProgress(_ context.Context, diaryID uuid.UUID, now time.Time) (*domain.History, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, h := range s.db.histories {
		if h.DiaryID == diaryID && h.InProgress(now) {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memHistories) ListInProgressByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (map[uuid.UUID]*domain.History, error) {
	diaries, _ := memDiaries(s).ListByUser(ctx, userID)
	out := map[uuid.UUID]*domain.History{}
	for _, d := range diaries {
		if h, _ := s.GetInProgress(ctx, d.ID, now); h != nil {
			out[d.ID] = h
		}
	}
	return out, nil
}

func (s memHistories) Close(_ context.Context, id uuid.UUID, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h, ok := s.db.histories[id]
	if !ok {
		return store.ErrHistoryNotFound
	}
	if h.ClosedAt == nil {
		h.ClosedAt = &at
	}
	return nil
}

func (s memHistories) WithTx(*sql.Tx) store.HistoryStore { return s }

type memTokens struct{ db *memDB }

func (s memTokens) Upsert(_ context.Context, t *store.RefreshToken) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cp := *t
	s.db.tokens[t.UserID] = &cp
	return nil
}

func (s memTokens) GetByHash(_ context.Context, hash string) (*store.RefreshToken, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, t := range s.db.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrRefreshTokenNotFound
}

func (s memTokens) DeleteByHash(_ context.Context, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, t := range s.db.tokens {
		if t.TokenHash == hash {
			delete(s.db.tokens, id)
		}
	}
	return nil
}

func (s memTokens) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.tokens, userID)
	return nil
}

func (s memTokens) WithTx(*sql.Tx) store.RefreshTokenStore { return s }
