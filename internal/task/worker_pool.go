package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool executes tasks read from a TaskQueue on a fixed number of
// goroutines.
type WorkerPool struct {
	queue       *TaskQueue
	workerCount int
	timeout     time.Duration
	logger      *slog.Logger

	// errorHandler is called when a task fails. If nil, errors are only logged.
	errorHandler func(task Task, err error)

	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount is the number of concurrent workers. Values below 1 mean 1.
	WorkerCount int

	// TaskTimeout bounds a single Execute call. Zero means no timeout.
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		TaskTimeout: 5 * time.Second,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(queue *TaskQueue, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		workerCount = 1
	}

	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		timeout:     config.TaskTimeout,
		logger:      logger,
	}
}

// SetErrorHandler sets the callback for failed tasks. Call it before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Subsequent calls do nothing.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop closes the queue and waits until every queued task has run.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.queue.Close()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for task := range p.queue.GetChannel() {
		p.process(task, id)
	}
	p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

func (p *WorkerPool) process(task Task, workerID int) {
	logger := p.logger.With("task_type", task.Type(), "worker_id", workerID)

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err := p.execute(ctx, task)
	if err != nil {
		logger.Error("task execution failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	logger.Debug("task completed", "duration_ms", time.Since(start).Milliseconds())
}

// execute runs the task and turns a panic into an error so one bad task
// cannot take a worker down.
func (p *WorkerPool) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(ctx)
}
