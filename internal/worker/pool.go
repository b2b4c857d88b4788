package worker

import (
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
)

// Pool is a bounded goroutine pool for blocking probe work. Submissions
// beyond the pool width block until a worker frees up, which keeps the
// number of in-flight HTTP requests capped.
type Pool struct {
	inner *ants.Pool
}

// NewPool creates a pool of the given width. Panics inside tasks are
// recovered and logged rather than taking down the batch.
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	p, err := ants.NewPool(size, ants.WithPanicHandler(func(r interface{}) {
		logger.L().Error("worker panic recovered", zap.Any("panic", r))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{inner: p}, nil
}

// Submit schedules task on the pool, blocking until a worker accepts it.
func (p *Pool) Submit(task func()) error {
	if err := p.inner.Submit(task); err != nil {
		return fmt.Errorf("submit task: %w", err)
	}
	return nil
}

// Cap returns the pool width.
func (p *Pool) Cap() int {
	return p.inner.Cap()
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int {
	return p.inner.Running()
}

// Release shuts the pool down, waiting up to timeout for running tasks to
// finish. With a zero timeout the pool is released immediately.
func (p *Pool) Release(timeout time.Duration) error {
	if timeout <= 0 {
		p.inner.Release()
		return nil
	}
	if err := p.inner.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release worker pool: %w", err)
	}
	return nil
}
