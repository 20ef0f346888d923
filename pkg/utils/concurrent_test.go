package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestSemaphoreGatherRespectsLimit(t *testing.T) {
	t.Parallel()

	var current, peak int64
	fns := make([]func() error, 16)
	for i := range fns {
		fns[i] = func() error {
			n := atomic.AddInt64(&current, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			atomic.AddInt64(&current, -1)
			return nil
		}
	}

	errs := SemaphoreGather(context.Background(), 3, fns...)
	for i, err := range errs {
		if err != nil {
			t.Errorf("fn %d returned error: %v", i, err)
		}
	}
	if atomic.LoadInt64(&peak) > 3 {
		t.Errorf("peak concurrency %d exceeded limit 3", peak)
	}
}

func TestExecuteWithResultsPreservesOrder(t *testing.T) {
	t.Parallel()

	fns := make([]func() (int, error), 10)
	for i := range fns {
		i := i
		fns[i] = func() (int, error) { return i * i, nil }
	}

	results, errs := ExecuteWithResults(context.Background(), 4, fns...)
	for i := range fns {
		if errs[i] != nil {
			t.Fatalf("unexpected error at %d: %v", i, errs[i])
		}
		if results[i] != i*i {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*i)
		}
	}
}

func TestExecuteRecoversPanics(t *testing.T) {
	t.Parallel()

	errs := SemaphoreGather(context.Background(), 2,
		func() error { panic("boom") },
		func() error { return nil },
	)

	var panicErr *PanicError
	if !errors.As(errs[0], &panicErr) {
		t.Fatalf("expected PanicError, got %v", errs[0])
	}
	if errs[1] != nil {
		t.Errorf("sibling should be unaffected, got %v", errs[1])
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	executor := NewConcurrentExecutor(1)
	// Occupy the only slot so the second function must wait on the semaphore.
	go executor.Execute(context.Background(), func() error { <-block; return nil })

	errs := executor.Execute(ctx, func() error { return nil })
	close(block)

	if !errors.Is(errs[0], context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", errs[0])
	}
}

func TestWorkerPoolProcessItems(t *testing.T) {
	t.Parallel()

	pool := NewWorkerPool(3, func(_ context.Context, s string) (int, error) {
		if s == "" {
			return 0, errors.New("empty item")
		}
		return len(s), nil
	})

	results, errs := pool.ProcessItems(context.Background(), []string{"a", "bb", "", "cccc"})
	want := []int{1, 2, 0, 4}
	for i, w := range want {
		if results[i] != w {
			t.Errorf("results[%d] = %d, want %d", i, results[i], w)
		}
	}
	if errs[2] == nil {
		t.Error("expected error for empty item")
	}
}

func TestSanitizeFilenameParallel(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Area of a Circle":       "area_of_a_circle",
		"  Lorentz/Transform!  ": "lorentz_transform",
		"fourier²":               "fourier",
		"":                       "",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
