// Package parallel runs independent tasks on a bounded set of goroutines.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Matza-labs/atlas-sdk/pkg/logging"
)

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = errors.New("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
}

// NewWorkerPool starts workers goroutines (at least one). Panics in tasks
// are recovered and logged to logger, which may be nil.
func NewWorkerPool(workers int, logger logging.Logger) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		logger:    logging.OrNop(logger).With(logging.Component("parallel")),
	}
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}
	return pool, nil
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		wp.run(task)
	}
}

func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("task panic recovered", logging.Any("panic", r))
		}
	}()
	task()
}

// Submit queues task. It returns false once the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for queued ones to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Map applies fn to every item on up to workers goroutines and returns the
// results in input order. Every failing item contributes to the joined
// error; items not started before ctx is done fail with ctx.Err().
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if workers > len(items) {
		workers = len(items)
	}
	pool, err := NewWorkerPool(workers, nil)
	if err != nil {
		return nil, err
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	for i, item := range items {
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("item %d: %w", i, err)
				return
			}
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("item %d: panic: %v", i, r)
				}
			}()
			r, err := fn(ctx, item)
			if err != nil {
				errs[i] = fmt.Errorf("item %d: %w", i, err)
				return
			}
			results[i] = r
		})
	}
	pool.Close()
	return results, errors.Join(errs...)
}
