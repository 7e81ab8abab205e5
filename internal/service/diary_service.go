package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/metrics"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/store"
)

// maxInvitationCodeAttempts bounds code regeneration when a freshly generated
// invitation code is already taken.
const maxInvitationCodeAttempts = 5

// notifyTimeout bounds the best-effort notification sent after an invite.
const notifyTimeout = 5 * time.Second

// DiaryView is a diary as seen by one of its members, with the fields that
// are derived from its membership rows and histories.
type DiaryView struct {
	Diary          domain.Diary
	Members        []domain.DiaryGroup
	Status         domain.DiaryStatus
	CurrentHistory *domain.History
}

// InviteResult is returned when a user joins a diary.
// Admin is nil when the diary has no admin row.
type InviteResult struct {
	Admin *domain.User
	Diary *domain.Diary
}

// DiaryService coordinates diary membership and histories.
// Every mutating operation runs in a single transaction and locks the diary
// row it changes, so concurrent joins and history starts on the same diary
// are serialised.
type DiaryService interface {
	// CreateDiary creates a diary with a fresh invitation code and makes the
	// founder its admin member.
	CreateDiary(ctx context.Context, colorID int64, title string, founderID uuid.UUID) (*domain.Diary, error)

	// Invite adds inviteeID as the second member of the diary owning code.
	Invite(ctx context.Context, code string, inviteeID uuid.UUID) (*InviteResult, error)

	// CreateHistory starts a history of periodDays days (0 selects the default)
	// on behalf of an active member. Fails with domain.ErrHistoryInProgress
	// while another history is running.
	CreateHistory(ctx context.Context, diaryID, userID uuid.UUID, periodDays int) (uuid.UUID, error)

	// ListDiaries returns every diary the user has a membership row in.
	ListDiaries(ctx context.Context, userID uuid.UUID) ([]DiaryView, error)

	// DiaryStatus derives the status of a diary.
	DiaryStatus(ctx context.Context, diaryID uuid.UUID) (domain.DiaryStatus, error)

	// CurrentHistory returns the running history of a diary, or nil.
	CurrentHistory(ctx context.Context, diaryID uuid.UUID) (*domain.History, error)

	// LeaveDiary marks the user's membership outed. The diary becomes DISCARD.
	LeaveDiary(ctx context.Context, diaryID, userID uuid.UUID) error

	// CloseHistory ends a history early on behalf of an active member.
	CloseHistory(ctx context.Context, historyID, userID uuid.UUID) error

	// Authorize fails with ErrNotDiaryMember unless the user has a
	// membership row (active or outed) in the diary.
	Authorize(ctx context.Context, diaryID, userID uuid.UUID) error

	// ListColors returns the palette diaries can be created with.
	ListColors(ctx context.Context) ([]domain.Color, error)
}

// DiaryStores groups the stores DiaryService reads and writes.
type DiaryStores struct {
	Users     store.UserStore
	Colors    store.ColorStore
	Diaries   store.DiaryStore
	Groups    store.DiaryGroupStore
	Histories store.HistoryStore
}

func (s DiaryStores) validate() error {
	switch {
	case s.Users == nil:
		return errors.New("user store cannot be nil")
	case s.Colors == nil:
		return errors.New("color store cannot be nil")
	case s.Diaries == nil:
		return errors.New("diary store cannot be nil")
	case s.Groups == nil:
		return errors.New("diary group store cannot be nil")
	case s.Histories == nil:
		return errors.New("history store cannot be nil")
	}
	return nil
}

type diaryService struct {
	tx        store.Transactor
	users     store.UserStore
	colors    store.ColorStore
	diaries   store.DiaryStore
	groups    store.DiaryGroupStore
	histories store.HistoryStore
	notifier  Notifier
	metrics   metrics.Recorder
	logger    *slog.Logger
	timeFunc  func() time.Time
}

var _ DiaryService = (*diaryService)(nil)

// NewDiaryService creates a DiaryService.
// A nil notifier logs events instead; a nil recorder discards metrics.
func NewDiaryService(
	tx store.Transactor,
	stores DiaryStores,
	notifier Notifier,
	recorder metrics.Recorder,
	log *slog.Logger,
) (DiaryService, error) {
	if tx == nil {
		return nil, errors.New("transactor cannot be nil")
	}
	if err := stores.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	return &diaryService{
		tx:        tx,
		users:     stores.Users,
		colors:    stores.Colors,
		diaries:   stores.Diaries,
		groups:    stores.Groups,
		histories: stores.Histories,
		notifier:  notifier,
		metrics:   recorder,
		logger:    log.With("component", "diary_service"),
		timeFunc:  time.Now,
	}, nil
}

func (s *diaryService) now() time.Time {
	return s.timeFunc().UTC()
}

func (s *diaryService) CreateDiary(
	ctx context.Context,
	colorID int64,
	title string,
	founderID uuid.UUID,
) (*domain.Diary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	diary, err := domain.NewDiary(title, colorID)
	if err != nil {
		return nil, s.fail(ctx, "create_diary", err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.colors.WithTx(tx).GetByID(ctx, colorID); err != nil {
			return err
		}
		if _, err := activeUser(ctx, s.users.WithTx(tx), founderID); err != nil {
			return err
		}

		diaries := s.diaries.WithTx(tx)
		for attempt := 1; ; attempt++ {
			err := diaries.Create(ctx, diary)
			if err == nil {
				break
			}
			if !errors.Is(err, store.ErrInvitationCodeExists) || attempt == maxInvitationCodeAttempts {
				return err
			}
			log.Warn("invitation code collision, regenerating", "attempt", attempt)
			if err := diary.RegenerateInvitationCode(); err != nil {
				return err
			}
		}

		return s.groups.WithTx(tx).Create(ctx, domain.NewDiaryGroup(diary.ID, founderID, true))
	})
	if err != nil {
		return nil, s.fail(ctx, "create_diary", err)
	}

	s.metrics.RecordDiaryEvent(metrics.EventDiaryCreated)
	log.Info("diary created", "diary_id", diary.ID, "user_id", founderID)
	return diary, nil
}

func (s *diaryService) Invite(ctx context.Context, code string, inviteeID uuid.UUID) (*InviteResult, error) {
	if !domain.IsValidInvitationCode(code) {
		return nil, s.fail(ctx, "invite", store.ErrInvitationCodeNotFound)
	}

	var result InviteResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		diary, err := s.diaries.WithTx(tx).GetByInvitationCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}

		groupStore := s.groups.WithTx(tx)
		groups, err := groupStore.ListByDiary(ctx, diary.ID)
		if err != nil {
			return err
		}

		users := s.users.WithTx(tx)
		if _, err := activeUser(ctx, users, inviteeID); err != nil {
			return err
		}

		adminID, err := domain.CanInvite(groups, inviteeID)
		if err != nil {
			return err
		}

		if err := groupStore.Create(ctx, domain.NewDiaryGroup(diary.ID, inviteeID, false)); err != nil {
			if errors.Is(err, store.ErrDiaryGroupExists) {
				return domain.ErrMemberExists
			}
			return err
		}

		result.Diary = diary
		if adminID != nil {
			admin, err := users.GetByID(ctx, *adminID)
			if err != nil && !errors.Is(err, store.ErrUserNotFound) {
				return err
			}
			result.Admin = admin
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "invite", err)
	}

	s.metrics.RecordDiaryEvent(metrics.EventMemberJoined)
	logger.FromContextOrDefault(ctx, s.logger).Info("user joined diary",
		"diary_id", result.Diary.ID,
		"user_id", inviteeID)

	event := domain.InvitationAccepted{
		DiaryID:    result.Diary.ID,
		DiaryTitle: result.Diary.Title,
		InviteeID:  inviteeID,
		OccurredAt: s.now(),
	}
	if result.Admin != nil {
		id := result.Admin.ID
		event.AdminID = &id
	}
	s.notify(ctx, event)

	return &result, nil
}

// notify publishes the event without failing the caller. The request
// context may already be cancelled, so only its values are kept.
func (s *diaryService) notify(ctx context.Context, event domain.InvitationAccepted) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	err := s.notifier.InvitationAccepted(ctx, event)
	s.metrics.RecordNotification(err == nil)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to publish invitation notification",
			"error", err,
			"diary_id", event.DiaryID)
	}
}

func (s *diaryService) CreateHistory(
	ctx context.Context,
	diaryID, userID uuid.UUID,
	periodDays int,
) (uuid.UUID, error) {
	now := s.now()
	history, err := domain.NewHistory(diaryID, periodDays, now)
	if err != nil {
		return uuid.Nil, s.fail(ctx, "create_history", err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.diaries.WithTx(tx).GetByIDForUpdate(ctx, diaryID); err != nil {
			return err
		}

		groups, err := s.groups.WithTx(tx).ListByDiary(ctx, diaryID)
		if err != nil {
			return err
		}
		if _, err := activeMembership(groups, userID); err != nil {
			return err
		}

		histories := s.histories.WithTx(tx)
		current, err := histories.GetInProgress(ctx, diaryID, now)
		if err != nil {
			return err
		}
		if err := domain.CanStartHistory(current); err != nil {
			return err
		}

		return histories.Create(ctx, history)
	})
	if err != nil {
		return uuid.Nil, s.fail(ctx, "create_history", err)
	}

	s.metrics.RecordDiaryEvent(metrics.EventHistoryStarted)
	logger.FromContextOrDefault(ctx, s.logger).Info("history started",
		"diary_id", diaryID,
		"history_id", history.ID,
		"ended_at", history.EndedAt)
	return history.ID, nil
}

func (s *diaryService) ListDiaries(ctx context.Context, userID uuid.UUID) ([]DiaryView, error) {
	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return nil, s.fail(ctx, "list_diaries", err)
	}

	diaries, err := s.diaries.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list_diaries", err)
	}

	groups, err := s.groups.ListByUserDiaries(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list_diaries", err)
	}

	current, err := s.histories.ListInProgressByUser(ctx, userID, s.now())
	if err != nil {
		return nil, s.fail(ctx, "list_diaries", err)
	}

	views := make([]DiaryView, 0, len(diaries))
	for _, d := range diaries {
		members := groups[d.ID]
		history := current[d.ID]
		views = append(views, DiaryView{
			Diary:          d,
			Members:        members,
			Status:         domain.DiaryStatusOf(members, history),
			CurrentHistory: history,
		})
	}
	return views, nil
}

func (s *diaryService) DiaryStatus(ctx context.Context, diaryID uuid.UUID) (domain.DiaryStatus, error) {
	if _, err := s.diaries.GetByID(ctx, diaryID); err != nil {
		return "", s.fail(ctx, "diary_status", err)
	}

	groups, err := s.groups.ListByDiary(ctx, diaryID)
	if err != nil {
		return "", s.fail(ctx, "diary_status", err)
	}

	current, err := s.histories.GetInProgress(ctx, diaryID, s.now())
	if err != nil {
		return "", s.fail(ctx, "diary_status", err)
	}

	return domain.DiaryStatusOf(groups, current), nil
}

func (s *diaryService) CurrentHistory(ctx context.Context, diaryID uuid.UUID) (*domain.History, error) {
	if _, err := s.diaries.GetByID(ctx, diaryID); err != nil {
		return nil, s.fail(ctx, "current_history", err)
	}

	current, err := s.histories.GetInProgress(ctx, diaryID, s.now())
	if err != nil {
		return nil, s.fail(ctx, "current_history", err)
	}
	return current, nil
}

func (s *diaryService) LeaveDiary(ctx context.Context, diaryID, userID uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.diaries.WithTx(tx).GetByIDForUpdate(ctx, diaryID); err != nil {
			return err
		}

		groupStore := s.groups.WithTx(tx)
		groups, err := groupStore.ListByDiary(ctx, diaryID)
		if err != nil {
			return err
		}

		if _, err := activeMembership(groups, userID); err != nil {
			return err
		}

		return groupStore.MarkOuted(ctx, diaryID, userID)
	})
	if err != nil {
		return s.fail(ctx, "leave_diary", err)
	}

	s.metrics.RecordDiaryEvent(metrics.EventMemberLeft)
	logger.FromContextOrDefault(ctx, s.logger).Info("user left diary",
		"diary_id", diaryID,
		"user_id", userID)
	return nil
}

func (s *diaryService) CloseHistory(ctx context.Context, historyID, userID uuid.UUID) error {
	var closed bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		histories := s.histories.WithTx(tx)
		history, err := histories.GetByID(ctx, historyID)
		if err != nil {
			return err
		}

		if _, err := s.diaries.WithTx(tx).GetByIDForUpdate(ctx, history.DiaryID); err != nil {
			return err
		}

		groups, err := s.groups.WithTx(tx).ListByDiary(ctx, history.DiaryID)
		if err != nil {
			return err
		}
		if _, err := activeMembership(groups, userID); err != nil {
			return err
		}

		if history.ClosedAt != nil {
			return nil
		}
		closed = true
		return histories.Close(ctx, historyID, s.now())
	})
	if err != nil {
		return s.fail(ctx, "close_history", err)
	}

	if closed {
		s.metrics.RecordDiaryEvent(metrics.EventHistoryClosed)
		logger.FromContextOrDefault(ctx, s.logger).Info("history closed", "history_id", historyID)
	}
	return nil
}

func (s *diaryService) Authorize(ctx context.Context, diaryID, userID uuid.UUID) error {
	if _, err := s.diaries.GetByID(ctx, diaryID); err != nil {
		return s.fail(ctx, "authorize", err)
	}

	groups, err := s.groups.ListByDiary(ctx, diaryID)
	if err != nil {
		return s.fail(ctx, "authorize", err)
	}
	if domain.MembershipOf(groups, userID) == nil {
		return s.fail(ctx, "authorize", ErrNotDiaryMember)
	}
	return nil
}

func (s *diaryService) ListColors(ctx context.Context) ([]domain.Color, error) {
	colors, err := s.colors.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list_colors", err)
	}
	return colors, nil
}

// activeMembership returns the user's row among groups. Writes to a diary
// need one that is not outed; reads only need Authorize.
func activeMembership(groups []domain.DiaryGroup, userID uuid.UUID) (*domain.DiaryGroup, error) {
	member := domain.MembershipOf(groups, userID)
	switch {
	case member == nil:
		return nil, ErrNotDiaryMember
	case member.IsOuted:
		return nil, domain.ErrMemberOuted
	}
	return member, nil
}

// fail logs err at a level matching its class and wraps it.
func (s *diaryService) fail(ctx context.Context, op string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if isExpected(err) {
		log.Debug("diary operation rejected", "op", op, "error", err)
	} else {
		log.Error("diary operation failed", "op", op, "error", err)
	}
	return NewServiceError("diary", op, err)
}
