package jwtauth

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Executor runs tasks off the calling goroutine. Execute returns once
// the task has been handed off, or with an error if it could not be
// scheduled before ctx is done.
type Executor interface {
	Execute(ctx context.Context, task func()) error
}

// GoExecutor starts one goroutine per task
type GoExecutor struct{}

// Execute implements Executor
func (GoExecutor) Execute(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	go task()
	return nil
}

// BoundedExecutor runs at most a fixed number of tasks at once.
// Execute blocks until a slot is free or ctx is done.
type BoundedExecutor struct {
	sem *semaphore.Weighted
}

// NewBoundedExecutor creates an executor running up to limit tasks concurrently
func NewBoundedExecutor(limit int64) (*BoundedExecutor, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("executor limit must be positive, got %d", limit)
	}
	return &BoundedExecutor{sem: semaphore.NewWeighted(limit)}, nil
}

// Execute implements Executor
func (e *BoundedExecutor) Execute(ctx context.Context, task func()) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer e.sem.Release(1)
		task()
	}()
	return nil
}

var (
	_ Executor = GoExecutor{}
	_ Executor = (*BoundedExecutor)(nil)
)
