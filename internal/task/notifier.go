package task

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/phrazzld/palette-api/internal/domain"
)

// TaskTypeInvitationAccepted is the Type of tasks that deliver an
// InvitationAccepted event.
const TaskTypeInvitationAccepted = "notify_invitation_accepted"

// Delivery is the notifier the queued events are eventually handed to.
type Delivery interface {
	InvitationAccepted(ctx context.Context, event domain.InvitationAccepted) error
}

// AsyncNotifier queues events and delivers them from a worker pool, so the
// caller only waits for the enqueue.
type AsyncNotifier struct {
	next  Delivery
	queue *TaskQueue
	pool  *WorkerPool
}

// NewAsyncNotifier starts a worker pool that delivers events to next.
// queueSize bounds the number of undelivered events; further events are
// rejected with ErrQueueFull.
func NewAsyncNotifier(next Delivery, queueSize int, config WorkerPoolConfig, logger *slog.Logger) (*AsyncNotifier, error) {
	if next == nil {
		return nil, errors.New("delivery notifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "async_notifier")

	queue := NewTaskQueue(queueSize, logger)
	pool := NewWorkerPool(queue, config, logger)
	pool.Start()

	return &AsyncNotifier{next: next, queue: queue, pool: pool}, nil
}

// SetErrorHandler forwards to the worker pool. Call it before any event
// is queued.
func (n *AsyncNotifier) SetErrorHandler(handler func(task Task, err error)) {
	n.pool.SetErrorHandler(handler)
}

// InvitationAccepted queues the event. The context is not used for
// delivery, which happens after the caller has returned.
func (n *AsyncNotifier) InvitationAccepted(_ context.Context, event domain.InvitationAccepted) error {
	return n.queue.Enqueue(Func{
		Name: TaskTypeInvitationAccepted,
		Fn: func(ctx context.Context) error {
			return n.next.InvitationAccepted(ctx, event)
		},
	})
}

// Pending returns the number of queued, undelivered events.
func (n *AsyncNotifier) Pending() int {
	return n.queue.Len()
}

// Close delivers everything still queued, then closes the wrapped notifier
// when it is an io.Closer.
func (n *AsyncNotifier) Close() error {
	n.pool.Stop()
	if c, ok := n.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
