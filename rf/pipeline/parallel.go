package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallel applies fn to every element of in on at most workers goroutines.
// Per-element errors are returned in errs without stopping the others; the
// returned error is only set when ctx is cancelled.
func parallel[T, U any](ctx context.Context, workers int, in []T, fn func(T) (U, error)) (out []U, errs []error, err error) {
	out = make([]U, len(in))
	errs = make([]error, len(in))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range in {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i], errs[i] = fn(in[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return out, errs, nil
}
