package task

import "context"

// Task is a unit of background work.
type Task interface {
	// Type names the kind of task for logs and metrics.
	Type() string

	// Execute performs the work. The context carries the per-task timeout.
	Execute(ctx context.Context) error
}

// Func adapts a plain function into a Task.
type Func struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Type implements Task.
func (f Func) Type() string { return f.Name }

// Execute implements Task.
func (f Func) Execute(ctx context.Context) error { return f.Fn(ctx) }
