package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"riprice/internal/logging"
)

// PoolMetrics provides metrics about the worker pool's performance
type PoolMetrics struct {
	TotalTasks         int64
	CompletedTasks     int64
	FailedTasks        int64
	CurrentWorkers     int64
	PeakWorkers        int64
	AverageExecutionMs int64
	TotalExecutionMs   int64
	mu                 sync.RWMutex
}

// Task represents a unit of work to be executed
type Task func(ctx context.Context) error

// Pool manages a pool of workers for executing tasks concurrently
type Pool struct {
	maxWorkers    int
	taskTimeout   time.Duration
	tasks         chan Task
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	metrics       *PoolMetrics
	activeWorkers int64
	mu            sync.RWMutex
	closed        bool
}

// NewPool creates a worker pool bound to parent. Each task runs under its own
// context that expires after taskTimeout, or never when taskTimeout is zero.
func NewPool(parent context.Context, maxWorkers int, taskTimeout time.Duration) (*Pool, error) {
	if maxWorkers <= 0 {
		return nil, fmt.Errorf("maxWorkers must be greater than 0, got %d", maxWorkers)
	}
	if taskTimeout < 0 {
		return nil, fmt.Errorf("task timeout must not be negative")
	}

	ctx, cancel := context.WithCancel(parent)
	return &Pool{
		maxWorkers:  maxWorkers,
		taskTimeout: taskTimeout,
		tasks:       make(chan Task, maxWorkers*2),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &PoolMetrics{},
	}, nil
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops accepting tasks and waits for queued tasks to complete
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// GetMetrics returns the current metrics for the pool
func (p *Pool) GetMetrics() PoolMetrics {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	return PoolMetrics{
		TotalTasks:         p.metrics.TotalTasks,
		CompletedTasks:     p.metrics.CompletedTasks,
		FailedTasks:        p.metrics.FailedTasks,
		CurrentWorkers:     atomic.LoadInt64(&p.activeWorkers),
		PeakWorkers:        atomic.LoadInt64(&p.metrics.PeakWorkers),
		AverageExecutionMs: p.metrics.TotalExecutionMs / max(p.metrics.CompletedTasks+p.metrics.FailedTasks, 1),
		TotalExecutionMs:   p.metrics.TotalExecutionMs,
	}
}

// Submit queues a task; it reports false once the pool is stopped.
// Tasks queued after the parent context is cancelled still run, with a cancelled context.
func (p *Pool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer p.wg.Done()

	current := atomic.AddInt64(&p.activeWorkers, 1)
	defer atomic.AddInt64(&p.activeWorkers, -1)

	for {
		peak := atomic.LoadInt64(&p.metrics.PeakWorkers)
		if current <= peak || atomic.CompareAndSwapInt64(&p.metrics.PeakWorkers, peak, current) {
			break
		}
	}

	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	start := time.Now()

	taskCtx, cancel := p.taskContext()
	err := p.safeRun(taskCtx, task)
	cancel()

	executionMs := time.Since(start).Milliseconds()

	p.metrics.mu.Lock()
	p.metrics.TotalExecutionMs += executionMs
	if err != nil {
		p.metrics.FailedTasks++
	} else {
		p.metrics.CompletedTasks++
	}
	p.metrics.mu.Unlock()
}

func (p *Pool) taskContext() (context.Context, context.CancelFunc) {
	if p.taskTimeout == 0 {
		return context.WithCancel(p.ctx)
	}
	return context.WithTimeout(p.ctx, p.taskTimeout)
}

// safeRun turns a panicking task into a failed one
func (p *Pool) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
			logging.Error("Worker task panicked", err, nil)
		}
	}()
	return task(ctx)
}

// ExecuteTasks runs tasks on the pool and returns their errors, indexed like tasks.
// Tasks submitted after Stop are not run and report context.Canceled.
func (p *Pool) ExecuteTasks(tasks []Task) []error {
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup

	p.metrics.mu.Lock()
	p.metrics.TotalTasks += int64(len(tasks))
	p.metrics.mu.Unlock()

	for i, t := range tasks {
		i, task := i, t
		wg.Add(1)
		wrapped := func(ctx context.Context) error {
			defer wg.Done()
			errs[i] = p.safeRun(ctx, task)
			return errs[i]
		}

		if !p.Submit(wrapped) {
			wg.Done()
			errs[i] = fmt.Errorf("task not started: %w", context.Canceled)
		}
	}

	wg.Wait()
	return errs
}
