package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestFanOutProcessesEveryItem(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	var (
		mu   sync.Mutex
		seen = map[int]bool{}
	)
	err := fanOut(context.Background(), 4, items, func(_ context.Context, n int) error {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("fanOut = %v, want nil", err)
	}
	if len(seen) != len(items) {
		t.Fatalf("processed %d items, want %d", len(seen), len(items))
	}
}

func TestFanOutFailureDoesNotSkipSiblings(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var processed atomic.Int32

	errBoom := errors.New("boom")
	err := fanOut(context.Background(), 2, items, func(_ context.Context, n int) error {
		processed.Add(1)
		if n == 2 {
			return errBoom
		}
		return nil
	})
	if got := processed.Load(); got != int32(len(items)) {
		t.Fatalf("processed %d items, want %d: one failure must not cancel the rest", got, len(items))
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("fanOut = %v, want the item failure joined in", err)
	}
}

func TestFanOutJoinsAllErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")
	err := fanOut(context.Background(), 1, []error{err1, nil, err2}, func(_ context.Context, e error) error {
		return e
	})
	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Fatalf("fanOut = %v, want both failures joined", err)
	}
}

func TestFanOutEmptyAndZeroLimit(t *testing.T) {
	if err := fanOut(context.Background(), 4, nil, func(_ context.Context, _ int) error {
		t.Fatal("fn must not run for empty input")
		return nil
	}); err != nil {
		t.Fatalf("fanOut over nothing = %v, want nil", err)
	}

	// limit <= 0 falls back to serial rather than panicking in errgroup.
	var n atomic.Int32
	if err := fanOut(context.Background(), 0, []int{1, 2, 3}, func(_ context.Context, _ int) error {
		n.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("fanOut = %v, want nil", err)
	}
	if n.Load() != 3 {
		t.Fatalf("processed %d items, want 3", n.Load())
	}
}

func TestFanOutRespectsLimit(t *testing.T) {
	var current, peak atomic.Int32
	items := make([]int, 32)

	err := fanOut(context.Background(), 3, items, func(_ context.Context, _ int) error {
		c := current.Add(1)
		for {
			p := peak.Load()
			if c <= p || peak.CompareAndSwap(p, c) {
				break
			}
		}
		current.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("fanOut = %v, want nil", err)
	}
	if peak.Load() > 3 {
		t.Fatalf("observed %d concurrent workers, limit is 3", peak.Load())
	}
}
