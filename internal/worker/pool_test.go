package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPoolRejectsNonPositiveSize(t *testing.T) {
	if _, err := NewPool(0); err == nil {
		t.Error("NewPool(0) should fail")
	}
	if _, err := NewPool(-1); err == nil {
		t.Error("NewPool(-1) should fail")
	}
}

func TestPoolRunsAllTasks(t *testing.T) {
	pool, err := NewPool(4)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	defer pool.Release(time.Second)

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			done.Add(1)
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	wg.Wait()
	if got := done.Load(); got != 20 {
		t.Errorf("ran %d tasks, want 20", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const width = 2
	pool, err := NewPool(width)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	defer pool.Release(time.Second)

	var active, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	wg.Wait()
	if got := peak.Load(); got > width {
		t.Errorf("peak concurrency %d exceeded pool width %d", got, width)
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	pool, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	defer pool.Release(time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.Submit(func() {
		defer wg.Done()
		panic("boom")
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	wg.Wait()

	// The pool must still accept work after a panic.
	wg.Add(1)
	if err := pool.Submit(func() { wg.Done() }); err != nil {
		t.Fatalf("Submit() after panic error = %v", err)
	}
	wg.Wait()
}
