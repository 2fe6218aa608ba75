package services

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// fanOut runs fn once per item with bounded concurrency and waits for all
// of them. A failed item never cancels or blocks its siblings, and no
// failure is dropped: the join of every error comes back once the barrier
// is passed.
func fanOut[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := fn(ctx, item); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	// Errors are collected above; Wait only provides the barrier.
	_ = g.Wait()

	return errors.Join(errs...)
}
