package domain

import "github.com/google/uuid"

// DiaryStatus is the derived state of a diary.
type DiaryStatus string

const (
	// DiaryStatusWait means the founder is waiting for a second member.
	DiaryStatusWait DiaryStatus = "WAIT"
	// DiaryStatusReady means both members are present and no history is running.
	DiaryStatusReady DiaryStatus = "READY"
	// DiaryStatusStart means both members are present and a history is running.
	DiaryStatusStart DiaryStatus = "START"
	// DiaryStatusDiscard means a member left and the diary is abandoned.
	DiaryStatusDiscard DiaryStatus = "DISCARD"
)

// MaxDiaryMembers is the number of users a diary is shared between.
const MaxDiaryMembers = 2

// DiaryStatusOf computes the status of a diary from its membership rows and
// its in-progress history (nil when none).
//
// A diary without any rows cannot be joined or written to and is reported
// as DISCARD.
func DiaryStatusOf(groups []DiaryGroup, current *History) DiaryStatus {
	switch {
	case len(groups) == 0:
		return DiaryStatusDiscard
	case len(groups) == 1:
		return DiaryStatusWait
	case anyOuted(groups):
		return DiaryStatusDiscard
	case current == nil:
		return DiaryStatusReady
	default:
		return DiaryStatusStart
	}
}

// CanInvite decides whether inviteeID may join the diary owning groups.
// On success it returns the founder's user ID, or nil when no row is
// flagged as admin.
//
// The invitee's own outed row is checked before the member cap so that a
// user who left always gets ErrMemberOuted, even from a full diary.
func CanInvite(groups []DiaryGroup, inviteeID uuid.UUID) (*uuid.UUID, error) {
	if len(groups) == 0 {
		return nil, ErrDiaryEmpty
	}

	for _, g := range groups {
		if g.UserID == inviteeID && g.IsOuted {
			return nil, ErrMemberOuted
		}
	}

	if len(groups) >= MaxDiaryMembers {
		return nil, ErrDiaryFull
	}

	for _, g := range groups {
		if g.UserID == inviteeID {
			return nil, ErrMemberExists
		}
	}

	return AdminOf(groups), nil
}

// CanStartHistory fails with ErrHistoryInProgress when current is a running history.
func CanStartHistory(current *History) error {
	if current != nil {
		return ErrHistoryInProgress
	}
	return nil
}

// AdminOf returns the user ID of the first admin row, or nil if there is none.
func AdminOf(groups []DiaryGroup) *uuid.UUID {
	for _, g := range groups {
		if g.IsAdmin {
			id := g.UserID
			return &id
		}
	}
	return nil
}

// MembershipOf returns the row that belongs to userID, or nil.
func MembershipOf(groups []DiaryGroup, userID uuid.UUID) *DiaryGroup {
	for i := range groups {
		if groups[i].UserID == userID {
			return &groups[i]
		}
	}
	return nil
}

func anyOuted(groups []DiaryGroup) bool {
	for _, g := range groups {
		if g.IsOuted {
			return true
		}
	}
	return false
}
