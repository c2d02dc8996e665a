package transform

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks concurrently.
type Pool interface {
	// Run calls task for every i in [0, n) using at most workers goroutines
	// and waits for all of them. The context passed to task is canceled
	// once any task fails; Run returns the first failure.
	Run(ctx context.Context, workers, n int, task func(ctx context.Context, i int) error) error
}

// GroupPool is a Pool backed by errgroup.
type GroupPool struct{}

func (GroupPool) Run(ctx context.Context, workers, n int, task func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range n {
		g.Go(func() error {
			return task(gctx, i)
		})
	}

	return g.Wait()
}
