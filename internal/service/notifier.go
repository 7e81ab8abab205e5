package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/palette-api/internal/domain"
)

// Notifier delivers diary events to the members they concern.
// Implementations must be safe for concurrent use.
type Notifier interface {
	InvitationAccepted(ctx context.Context, event domain.InvitationAccepted) error
}

// LogNotifier writes events to the log. It is used when no message broker
// is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

// InvitationAccepted logs the event.
func (n *LogNotifier) InvitationAccepted(ctx context.Context, event domain.InvitationAccepted) error {
	n.logger.InfoContext(ctx, "invitation accepted",
		"diary_id", event.DiaryID,
		"invitee_id", event.InviteeID,
		"admin_id", event.AdminID)
	return nil
}
