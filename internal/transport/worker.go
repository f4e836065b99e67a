package transport

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// workerPool runs blocking driver calls on dedicated goroutines so callers
// only ever wait on a result channel or their own context.
type workerPool struct {
	jobs  chan func()
	group *errgroup.Group
	ctx   context.Context
	stop  context.CancelFunc
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = 1
	}
	ctx, stop := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	p := &workerPool{jobs: make(chan func()), group: group, ctx: gctx, stop: stop}
	for i := 0; i < size; i++ {
		group.Go(func() error {
			for {
				select {
				case job := <-p.jobs:
					job()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	return p
}

// submit hands fn to a worker and waits for its result. A caller that gives
// up through ctx abandons the result; the call itself still completes.
func submit[T any](ctx context.Context, p *workerPool, fn func() T) (T, error) {
	var zero T
	future := make(chan T, 1)
	job := func() { future <- fn() }
	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-p.ctx.Done():
		return zero, ErrClosed
	}
	select {
	case v := <-future:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// close stops accepting work and waits for in-flight calls to return.
func (p *workerPool) close() error {
	p.stop()
	return p.group.Wait()
}
