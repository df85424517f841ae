package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor()
		if bp.Concurrency() != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.Concurrency())
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		if bp := NewBatchProcessor(WithConcurrency(5)); bp.Concurrency() != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.Concurrency())
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		if bp := NewBatchProcessor(WithConcurrency(0)); bp.Concurrency() != DefaultConcurrency {
			t.Errorf("expected default concurrency, got %d", bp.Concurrency())
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		if bp := NewBatchProcessor(WithBatchLogger(nil)); bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestProcess tests bounded, ordered fan-out.
func TestProcess(t *testing.T) {
	t.Parallel()

	t.Run("processes every index", func(t *testing.T) {
		t.Parallel()

		var count atomic.Int32
		results, err := Process(context.Background(), NewBatchProcessor(), 10, func(_ context.Context, i int) (int, error) {
			count.Add(1)
			return i * i, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count.Load() != 10 || len(results) != 10 {
			t.Errorf("expected 10 results, got %d (calls %d)", len(results), count.Load())
		}
	})

	t.Run("restores index order after out-of-order completion", func(t *testing.T) {
		t.Parallel()

		n := 6
		results, err := Process(context.Background(), NewBatchProcessor(WithConcurrency(n)), n, func(_ context.Context, i int) (int, error) {
			// Later indexes finish first.
			time.Sleep(time.Duration(n-i) * 5 * time.Millisecond)
			return i + 1, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, r := range results {
			if r != i+1 {
				t.Errorf("result[%d]: got %d, expected %d", i, r, i+1)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		_, err := Process(context.Background(), NewBatchProcessor(WithConcurrency(2)), 10, func(_ context.Context, _ int) (struct{}, error) {
			c := current.Add(1)
			for {
				p := peak.Load()
				if c <= p || peak.CompareAndSwap(p, c) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return struct{}{}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency was %d, expected <= 2", peak.Load())
		}
	})

	t.Run("returns first error", func(t *testing.T) {
		t.Parallel()

		errDisk := errors.New("disk full")
		results, err := Process(context.Background(), NewBatchProcessor(WithConcurrency(1)), 5, func(_ context.Context, i int) (int, error) {
			if i == 2 {
				return 0, errDisk
			}
			return i, nil
		})
		if !errors.Is(err, errDisk) {
			t.Fatalf("expected errDisk, got %v", err)
		}
		if results != nil {
			t.Error("expected nil results on error")
		}
	})

	t.Run("zero items", func(t *testing.T) {
		t.Parallel()

		results, err := Process(context.Background(), NewBatchProcessor(), 0, func(_ context.Context, _ int) (int, error) {
			t.Error("unexpected call")
			return 0, nil
		})
		if err != nil || len(results) != 0 {
			t.Errorf("expected empty result, got %v, %v", results, err)
		}
	})
}
