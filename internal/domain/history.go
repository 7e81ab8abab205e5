package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultHistoryPeriodDays is used when a history is started without a period.
	DefaultHistoryPeriodDays = 7

	// MaxHistoryPeriodDays is the longest period a history may run for.
	MaxHistoryPeriodDays = 30
)

// History is a time-boxed round of diary writing.
// A history is in progress from StartedAt until EndedAt unless it was
// closed earlier.
type History struct {
	ID        uuid.UUID  `json:"id"`
	DiaryID   uuid.UUID  `json:"diary_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewHistory starts a history for the diary at now, running periodDays days.
// A zero periodDays selects DefaultHistoryPeriodDays.
func NewHistory(diaryID uuid.UUID, periodDays int, now time.Time) (*History, error) {
	if periodDays == 0 {
		periodDays = DefaultHistoryPeriodDays
	}
	if periodDays < 1 || periodDays > MaxHistoryPeriodDays {
		return nil, NewValidationError("period_days", "must be between 1 and 30", ErrInvalidHistoryPeriod)
	}
	if diaryID == uuid.Nil {
		return nil, ErrDiaryIDEmpty
	}

	now = now.UTC()
	return &History{
		ID:        uuid.New(),
		DiaryID:   diaryID,
		StartedAt: now,
		EndedAt:   now.AddDate(0, 0, periodDays),
		CreatedAt: now,
	}, nil
}

// InProgress reports whether the history is running at the given instant.
func (h *History) InProgress(now time.Time) bool {
	if h == nil || h.ClosedAt != nil {
		return false
	}
	return now.Before(h.EndedAt)
}
