package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvitationAccepted is emitted after a user joins a diary through its
// invitation code. AdminID is nil when the diary has no admin row.
type InvitationAccepted struct {
	DiaryID    uuid.UUID  `json:"diary_id"`
	DiaryTitle string     `json:"diary_title"`
	AdminID    *uuid.UUID `json:"admin_id,omitempty"`
	InviteeID  uuid.UUID  `json:"invitee_id"`
	OccurredAt time.Time  `json:"occurred_at"`
}
