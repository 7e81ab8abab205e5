package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/palette-api/internal/domain"
)

// RecordingNotifier captures published invitation events.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []domain.InvitationAccepted
	Err    error
}

// InvitationAccepted records the event and returns Err.
func (n *RecordingNotifier) InvitationAccepted(ctx context.Context, event domain.InvitationAccepted) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, event)
	return n.Err
}

// Published returns a copy of the recorded events.
func (n *RecordingNotifier) Published() []domain.InvitationAccepted {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.InvitationAccepted(nil), n.Events...)
}
